// Package recommend turns a skin condition and an allergy list into
// supplement and food recommendations produced by a text generation model.
//
// The package owns the prompt, the cleanup of the model's answer and the
// mapping of failures onto an error-carrying Result. Callers never receive a
// Go error from Recommend: generator and parse failures are part of the
// normal response payload.
package recommend
