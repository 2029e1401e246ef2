package models

import "time"

// Class groups registered users and manually added people around shared materials
type Class struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Institute     string         `json:"institute"`
	Description   string         `json:"description"`
	CreatedBy     string         `json:"createdBy"`
	CreatedAt     time.Time      `json:"createdAt"`
	Members       []string       `json:"members"`
	ManualMembers []ManualMember `json:"manualMembers"`
	Flashcards    []string       `json:"flashcards"`
	Folders       []string       `json:"folders"`
}

// ManualMember is a class participant without an account
type ManualMember struct {
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Roll    string    `json:"roll"`
	AddedAt time.Time `json:"addedAt"`
}

// RosterCounts summarizes the two membership lists of a class.
// The creator is not counted.
type RosterCounts struct {
	Registered int `json:"registeredCount"`
	Manual     int `json:"manualCount"`
}

// Total is the number of roster entries across both lists
func (r RosterCounts) Total() int {
	return r.Registered + r.Manual
}

func (c Class) EntityID() string { return c.ID }

// HasMember reports whether the identity belongs to the class by id, as creator,
// or through a manual member entry with exactly the same email.
func (c Class) HasMember(id Identity) bool {
	if id.ID != "" {
		if c.CreatedBy == id.ID {
			return true
		}
		for _, m := range c.Members {
			if m == id.ID {
				return true
			}
		}
	}
	if id.Email != "" {
		for _, m := range c.ManualMembers {
			if m.Email == id.Email {
				return true
			}
		}
	}
	return false
}

// HasRegisteredMember reports whether userID is in the members list only
func (c Class) HasRegisteredMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Roster counts registered and manual members
func (c Class) Roster() RosterCounts {
	return RosterCounts{
		Registered: len(c.Members),
		Manual:     len(c.ManualMembers),
	}
}

// MaterialCount is the number of shared references, not the number of resolved cards
func (c Class) MaterialCount() int {
	return len(c.Flashcards) + len(c.Folders)
}

// SharesFlashcard reports whether the card is shared directly or through one of the class folders
func (c Class) SharesFlashcard(card Flashcard) bool {
	for _, id := range c.Flashcards {
		if id == card.ID {
			return true
		}
	}
	if card.Unorganized() {
		return false
	}
	for _, id := range c.Folders {
		if id == *card.FolderID {
			return true
		}
	}
	return false
}
