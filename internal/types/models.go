package types

// CallRecord is one outbound call whose recording should be analysed.
type CallRecord struct {
	CallID      string `json:"call_id"`
	AudioURL    string `json:"audio_url"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Strategy    string `json:"strategy,omitempty"`
}

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	AudioURL string `json:"audio_url"`
	CallID   string `json:"call_id"`
}

// AnalyzeResponse is returned by POST /analyze.
type AnalyzeResponse struct {
	Result        string  `json:"result"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
	DetectionTime int64   `json:"detection_time"`
	ModelUsed     string  `json:"model_used"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// CallResult is the outcome of analysing one CallRecord in a batch.
type CallResult struct {
	CallRecord
	AnalyzeResponse
	Action     string `json:"action,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
}

// Failed reports whether the call could not be analysed.
func (r CallResult) Failed() bool { return r.Error != "" }
