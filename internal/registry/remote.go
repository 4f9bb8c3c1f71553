// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/docent-tui/internal/api"
)

// =============================================================================
// REMOTE STORE
// =============================================================================

// RemoteStore reads the catalog from the backend service. The server also
// registers chatbots itself as a side effect of PDF ingestion, so Put is a
// no-op for records it already knows; it exists to satisfy Store for the
// upload training path.
type RemoteStore struct {
	client *api.Client
}

// NewRemoteStore creates a remote store over the API client.
func NewRemoteStore(client *api.Client) *RemoteStore {
	return &RemoteStore{client: client}
}

// List fetches GET /chatbots for the scope.
func (s *RemoteStore) List(ctx context.Context, scope Scope) ([]Record, error) {
	infos, err := s.client.ListChatbots(ctx, api.Scope{Company: scope.Company, Team: scope.Team, Part: scope.Part})
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(infos))
	for _, info := range infos {
		out = append(out, Record{
			Name:          info.Name,
			Company:       info.Company,
			Team:          info.Team,
			Part:          info.Part,
			IndexPath:     info.IndexPath,
			CreatedAt:     time.UnixMilli(info.CreatedAt),
			LastTrainedAt: time.UnixMilli(info.LastTrainedAt),
			PDFURL:        info.PDFURL,
			// The server only lists chatbots whose index exists.
			IndexReady: true,
		})
	}
	return out, nil
}

// Put is a no-op: POST /upload_pdf registers the chatbot server-side
// before the training job completes, so there is nothing left to write.
func (s *RemoteStore) Put(context.Context, Record) error {
	return nil
}

// Delete calls DELETE /chatbots. The server removes index, source files
// and metadata together; a not-found answer surfaces as ErrNotFound.
func (s *RemoteStore) Delete(ctx context.Context, scope Scope, name string) (DeleteOutcome, string, error) {
	err := s.client.DeleteChatbot(ctx, api.Scope{Company: scope.Company, Team: scope.Team, Part: scope.Part}, name)
	if err != nil {
		if api.IsNotFound(err) {
			return DeleteFailed, "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return DeleteFailed, "", err
	}
	return Deleted, "", nil
}
