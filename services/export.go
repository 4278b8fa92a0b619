package services

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/hadealahmad/anonymous-messages/models"
)

// exportLimit caps unpaginated exports; beyond this the operator should
// narrow the filter.
const exportLimit = 10000

// Exporter renders the message set matching a filter as CSV or JSON. Both
// formats share Collect so they always agree on which messages they contain.
type Exporter struct {
	store   *MessageStore
	baseURL string
}

// NewExporter builds an Exporter; baseURL feeds post permalinks.
func NewExporter(store *MessageStore, baseURL string) *Exporter {
	return &Exporter{store: store, baseURL: strings.TrimRight(baseURL, "/")}
}

// Collect loads every message matching the filter, unpaginated up to the
// export cap. An empty result is an error so callers can tell the operator
// to adjust their filters instead of producing an empty file.
func (e *Exporter) Collect(f ListFilter) ([]models.Message, error) {
	msgs, err := e.store.List(f, 1, exportLimit)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, ErrNotFound
	}
	return msgs, nil
}

// csvHeader is the fixed 9-column export header.
var csvHeader = []string{
	"ID", "Sender Name", "Message", "Category", "Status",
	"Response Type", "Response", "Created Date", "Updated Date",
}

// WriteCSV writes the fixed-header CSV rendering of msgs to w.
func (e *Exporter) WriteCSV(w io.Writer, msgs []models.Message) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range msgs {
		msg := &msgs[i]
		if err := cw.Write([]string{
			strconv.FormatUint(uint64(msg.ID), 10),
			msg.SenderName,
			msg.Body,
			categoryName(msg),
			titleCase(msg.Status),
			responseTypeLabel(msg),
			e.responseText(msg),
			msg.CreatedAt.Format("2006-01-02 15:04:05"),
			msg.UpdatedAt.Format("2006-01-02 15:04:05"),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportedMessage is the JSON export shape.
type exportedMessage struct {
	ID         uint              `json:"id"`
	SenderName string            `json:"sender_name"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Status     string            `json:"status"`
	CreatedAt  string            `json:"created_at"`
	UpdatedAt  string            `json:"updated_at"`
	Response   *exportedResponse `json:"response,omitempty"`
}

type exportedResponse struct {
	Type    string        `json:"type"`
	Content string        `json:"content,omitempty"`
	Post    *exportedPost `json:"post,omitempty"`
}

type exportedPost struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// WriteJSON writes the JSON rendering of msgs to w.
func (e *Exporter) WriteJSON(w io.Writer, msgs []models.Message) error {
	out := make([]exportedMessage, 0, len(msgs))
	for i := range msgs {
		msg := &msgs[i]
		item := exportedMessage{
			ID:         msg.ID,
			SenderName: msg.SenderName,
			Message:    msg.Body,
			Category:   categoryName(msg),
			Status:     msg.Status,
			CreatedAt:  msg.CreatedAt.Format("2006-01-02 15:04:05"),
			UpdatedAt:  msg.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if r := msg.Response; r != nil {
			er := &exportedResponse{Type: r.Type}
			switch {
			case r.Type == models.ResponseTypeShort && r.ShortBody != nil:
				er.Content = *r.ShortBody
			case r.Type == models.ResponseTypePost && r.Post != nil:
				er.Post = &exportedPost{
					ID:    r.Post.ID,
					Title: r.Post.Title,
					URL:   e.baseURL + "/posts/" + r.Post.Slug,
				}
			}
			item.Response = er
		}
		out = append(out, item)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func categoryName(msg *models.Message) string {
	if msg.Category != nil {
		return msg.Category.Name
	}
	return "Uncategorized"
}

func responseTypeLabel(msg *models.Message) string {
	if msg.Response == nil {
		return "No Response"
	}
	return titleCase(msg.Response.Type)
}

// responseText renders the CSV response column: inline text for short
// responses, "Title (URL)" for post responses.
func (e *Exporter) responseText(msg *models.Message) string {
	r := msg.Response
	if r == nil {
		return ""
	}
	if r.Type == models.ResponseTypeShort && r.ShortBody != nil {
		return *r.ShortBody
	}
	if r.Type == models.ResponseTypePost && r.Post != nil {
		return r.Post.Title + " (" + e.baseURL + "/posts/" + r.Post.Slug + ")"
	}
	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
