package models

// CreateDocumentRequest is the POST /api/documents body.
type CreateDocumentRequest struct {
	Title string   `json:"title"`
	Type  string   `json:"type"`
	URLs  []string `json:"urls"`
}

// ReplaceSelectionsRequest is the PUT /api/documents/{id}/selections body.
type ReplaceSelectionsRequest struct {
	Selections []Selection `json:"selections"`
}

// TransitionStatusRequest is the PUT /api/documents/{id}/status body.
type TransitionStatusRequest struct {
	Status string `json:"status"`
}
