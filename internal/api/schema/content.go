package schema

import "github.com/skybi/sunshine/internal/contract"

// CursorResponse represents the unified response to a content query
type CursorResponse struct {
	URI         string            `json:"uri"`
	ContentType string            `json:"content_type"`
	Count       int               `json:"count"`
	Data        []contract.Values `json:"data"`
}

// BuildCursorResponse builds a unified content query response
func BuildCursorResponse(uri, contentType string, rows []contract.Values) *CursorResponse {
	if rows == nil {
		rows = []contract.Values{}
	}
	return &CursorResponse{
		URI:         uri,
		ContentType: contentType,
		Count:       len(rows),
		Data:        rows,
	}
}

// InsertResponse represents the response to a single row insert
type InsertResponse struct {
	ID  int64  `json:"id"`
	URI string `json:"uri"`
}

// CountResponse represents the response to a bulk write
type CountResponse struct {
	Count int64 `json:"count"`
}

// TypeResponse represents the response to a MIME type lookup
type TypeResponse struct {
	URI         string `json:"uri"`
	ContentType string `json:"content_type"`
}

// ChangeMessage is sent to change feed subscribers whenever content they observe changed
type ChangeMessage struct {
	URI string `json:"uri"`
}
