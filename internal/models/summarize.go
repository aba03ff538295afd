package models

// SummarizeRequest asks the generative upstream for a lecture summary.
type SummarizeRequest struct {
	LectureText   string `json:"lecture_text" validate:"required"`
	Style         string `json:"style" validate:"omitempty,oneof=formal creative"`
	SummaryLength int    `json:"summary_length"`
}

// SummarizeResponse carries the produced summary.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}
