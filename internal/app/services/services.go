// Package services holds the business logic behind the HTTP handlers.
// Every operation takes the caller's identity as an explicit parameter.
package services

import (
	"strings"

	"github.com/yigit/flashclass/internal/app/auth"
	"github.com/yigit/flashclass/internal/app/models"
)

// Class event types published to connected members
const (
	EventClassPatched = "class.patched"
	EventClassDeleted = "class.deleted"
)

// ClassNotifier delivers class patches to connected members after they are written
type ClassNotifier interface {
	// PublishTo delivers payload to the subscribers of the class that pass audience
	PublishTo(classID, eventType string, payload any, audience func(models.Identity) bool)
	// CloseClass detaches every subscriber of the class
	CloseClass(classID string)
}

// StreamCloser ends the live streams a user opened under an identity that is no longer valid
type StreamCloser interface {
	DisconnectUser(userID string) int
}

type noopNotifier struct{}

func (noopNotifier) PublishTo(string, string, any, func(models.Identity) bool) {}
func (noopNotifier) CloseClass(string) {}
func (noopNotifier) DisconnectUser(string) int { return 0 }

func notifierOrNoop(n ClassNotifier) ClassNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// publishPatch sends p to the members of the patched class. Subscribers that can no longer
// view the class after the patch stop receiving events. A deletion closes every subscriber.
func publishPatch(n ClassNotifier, class models.Class, p models.ClassPatch) {
	if p.Deleted {
		n.PublishTo(p.ClassID, EventClassDeleted, p, nil)
		n.CloseClass(p.ClassID)
		return
	}
	patched := p.Apply(class)
	n.PublishTo(p.ClassID, EventClassPatched, p, func(viewer models.Identity) bool {
		return auth.CanView(viewer, patched)
	})
}

// uniqueIDs trims ids, drops blanks and keeps the first occurrence of each
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
