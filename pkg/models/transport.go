package models

// RunStatus is the terminal state of one pipeline run.
type RunStatus string

const (
	// RunDone means a report was produced, possibly with degraded
	// sections.
	RunDone RunStatus = "done"
	// RunRejected means the input batch was invalid and no external
	// call was made.
	RunRejected RunStatus = "rejected"
	// RunFailed means the mandatory extraction stage produced no
	// usable text from any page.
	RunFailed RunStatus = "failed"
)

// RunOutcome is what the pipeline returns to the web/CLI shell.
type RunOutcome struct {
	Status RunStatus
	// Reason is set for rejected and failed outcomes.
	Reason string

	Report             *Report
	PreviewOriginal    string
	PreviewTranslation string
	VocabularyCount    int
	GrammarCount       int
}

// UploadResponse is the JSON body returned by POST /upload.
// Field names mirror what the front end consumes.
type UploadResponse struct {
	Status         string `json:"status"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	WordCount      int    `json:"word_count"`
	GrammarCount   int    `json:"grammar_count"`
	Filename       string `json:"filename"`
	FileData       string `json:"file_data"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
