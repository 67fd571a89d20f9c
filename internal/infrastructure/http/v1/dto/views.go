// Package dto defines request and response shapes for HTTP API v1.
package dto

import (
	"mminv/internal/domain/inventory"
	"mminv/internal/domain/reorder"
)

// --- View DTOs ---

// RowResponse is one view row in API responses.
type RowResponse struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
	Input  string         `json:"input,omitempty"`
}

// ViewResponse is a sorted view's contents, in current row order.
type ViewResponse struct {
	View       string        `json:"view"`
	SortColumn string        `json:"sort_column"`
	Rows       []RowResponse `json:"rows"`
}

// FromViewSnapshot converts a workspace snapshot to a response DTO.
func FromViewSnapshot(snap inventory.ViewSnapshot) ViewResponse {
	resp := ViewResponse{
		View:       snap.Name,
		SortColumn: snap.SortColumn,
		Rows:       make([]RowResponse, len(snap.Rows)),
	}
	for i, row := range snap.Rows {
		resp.Rows[i] = RowResponse{
			ID:     row.ID,
			Fields: row.Fields,
			Input:  row.Input,
		}
	}
	return resp
}

// SortRequest selects a sort column for a view.
type SortRequest struct {
	Column string `json:"column" binding:"required"`
}

// InputsRequest records transient inputs on a transactional view, keyed by
// product identity. Blank values clear individual inputs.
type InputsRequest struct {
	Inputs map[string]string `json:"inputs" binding:"required"`
}

// --- Reorder DTOs ---

// OrderLineResponse is one product line of a synthesized purchase order.
type OrderLineResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// OrderResponse is one synthesized purchase order confirmation.
type OrderResponse struct {
	SupplierID   string              `json:"supplier_id"`
	SupplierName string              `json:"supplier_name"`
	Email        string              `json:"email_address"`
	Phone        string              `json:"phone_number"`
	Lines        []OrderLineResponse `json:"lines"`
}

// SubmitResponse reports the outcome of a batch submit.
type SubmitResponse struct {
	Orders []OrderResponse `json:"orders"`
}

// FromOrderSummaries converts engine summaries to a submit response.
func FromOrderSummaries(summaries []reorder.OrderSummary) SubmitResponse {
	resp := SubmitResponse{Orders: make([]OrderResponse, len(summaries))}
	for i, s := range summaries {
		order := OrderResponse{
			SupplierID:   s.SupplierID,
			SupplierName: s.SupplierName,
			Email:        s.Email,
			Phone:        s.Phone,
			Lines:        make([]OrderLineResponse, len(s.Lines)),
		}
		for j, line := range s.Lines {
			order.Lines[j] = OrderLineResponse{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
			}
		}
		resp.Orders[i] = order
	}
	return resp
}
