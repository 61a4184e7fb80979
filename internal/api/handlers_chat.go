// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package api

import "net/http"

// ChatMessages returns a page of chat history, oldest first.
func (h *Handler) ChatMessages(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	page, err := parsePagination(r, h.cfg.DefaultPageSize, h.cfg.MaxPageSize)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	messages, err := h.messages.Messages(r.Context(), page.Skip, page.Limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(messages, &PaginationMeta{
		Count:   len(messages),
		Offset:  page.Skip,
		Limit:   page.Limit,
		HasMore: len(messages) == page.Limit,
	})
}
