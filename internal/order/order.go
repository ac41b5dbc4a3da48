// Package order accepts incoming orders, relays them to the messaging
// channel and pushes them onto the live feed.
package order

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resepku/internal/notify"
	"resepku/socket"

	"github.com/google/uuid"
)

type Item struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
	Note string `json:"note,omitempty"`
}

type Request struct {
	Customer string `json:"customer"`
	Contact  string `json:"contact"`
	Note     string `json:"note,omitempty"`
	Items    []Item `json:"items"`
}

type Service struct {
	Sender notify.Sender
	Hub    *socket.Hub
}

func NewService(sender notify.Sender, hub *socket.Hub) *Service {
	return &Service{Sender: sender, Hub: hub}
}

// Place relays the order and, only after the relay accepted it, broadcasts
// it to feed clients. Returns the order reference.
func (s *Service) Place(ctx context.Context, req Request) (string, error) {
	ref := strings.ToUpper(uuid.NewString()[:8])

	if err := s.Sender.Send(ctx, formatOrder(ref, req)); err != nil {
		return "", err
	}

	if s.Hub != nil {
		payload, _ := json.Marshal(req)
		s.Hub.Broadcast <- socket.Event{Type: socket.OrderType, Ref: ref, Payload: payload}
	}
	return ref, nil
}

func formatOrder(ref string, req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order #%s\n", ref)
	fmt.Fprintf(&b, "From: %s (%s)\n", req.Customer, req.Contact)
	for _, item := range req.Items {
		fmt.Fprintf(&b, "- %dx %s", item.Qty, item.Name)
		if item.Note != "" {
			fmt.Fprintf(&b, " (%s)", item.Note)
		}
		b.WriteString("\n")
	}
	if req.Note != "" {
		fmt.Fprintf(&b, "Note: %s\n", req.Note)
	}
	return strings.TrimRight(b.String(), "\n")
}
