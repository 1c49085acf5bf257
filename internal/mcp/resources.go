package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/vizofit/internal/models"
)

func (h *handlers) library(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := h.ds.ListRoutines(ctx, "")
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.SavedWorkout{}
	}

	data, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
