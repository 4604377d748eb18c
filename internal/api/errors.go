package api

// Client-facing validation messages.
const (
	MsgMissingFields       = "Please provide skin_disease and allergies in request body"
	MsgEmptyCondition      = "skin_disease cannot be empty"
	MsgEmptyAllergies      = "allergies cannot be empty"
	MsgInvalidAllergies    = "allergies must be a string or list"
	MsgMissingImage        = `Missing "image" field`
	MsgNoSelectedFile      = "No selected file"
	MsgUploadTooLarge      = "Uploaded file is too large"
	MsgQueueFull           = "Server is busy, please retry later"
	MsgUploadAccepted      = "Image upload accepted, processing in background."
	MsgRootMessage         = "Test : Skin Disease Recommendation API"
	MsgRootUsage           = `POST to /recommend with {"skin_disease": "condition_name", "allergies": ["..."]}; POST an image to /upload and poll /result/<task_id>`
	MsgHealthy             = "API is running"
	msgResultLookupFailure = "Failed to look up task"
)
