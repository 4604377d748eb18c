// Package task runs image classifications in the background and tracks their
// outcome.
//
// An upload is written to a temporary file, registered in a Store as
// "processing" and handed to a bounded worker pool. The job classifies the
// file, records "completed" or "failed" and always deletes the file. Clients
// poll the Store by task id.
package task
