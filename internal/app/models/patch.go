package models

// Patch describes the fields one write touched. Callers holding a list snapshot merge it with
// MergeInto instead of re-reading; nothing guarantees the snapshot matches the store afterwards.
type Patch[T Entity] interface {
	TargetID() string
	Apply(T) T
	Removes() bool
}

// MergeInto returns a copy of list with p applied to the entry it targets.
// A removing patch drops the entry. A patch for an id not in the list leaves it unchanged.
func MergeInto[T Entity](list []T, p Patch[T]) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if item.EntityID() != p.TargetID() {
			out = append(out, item)
			continue
		}
		if p.Removes() {
			continue
		}
		out = append(out, p.Apply(item))
	}
	return out
}

// ClassPatch carries the class sets replaced by a write. Nil fields were not written.
type ClassPatch struct {
	ClassID       string          `json:"classId"`
	Members       *[]string       `json:"members,omitempty"`
	ManualMembers *[]ManualMember `json:"manualMembers,omitempty"`
	Flashcards    *[]string       `json:"flashcards,omitempty"`
	Folders       *[]string       `json:"folders,omitempty"`
	Deleted       bool            `json:"deleted,omitempty"`
}

func (p ClassPatch) TargetID() string { return p.ClassID }
func (p ClassPatch) Removes() bool    { return p.Deleted }

// Apply returns c with the written sets replaced
func (p ClassPatch) Apply(c Class) Class {
	if p.Members != nil {
		c.Members = cloneStrings(*p.Members)
	}
	if p.ManualMembers != nil {
		c.ManualMembers = append([]ManualMember(nil), (*p.ManualMembers)...)
	}
	if p.Flashcards != nil {
		c.Flashcards = cloneStrings(*p.Flashcards)
	}
	if p.Folders != nil {
		c.Folders = cloneStrings(*p.Folders)
	}
	return c
}

// FlashcardPatch carries the editable card fields as written by an update
type FlashcardPatch struct {
	FlashcardID string  `json:"flashcardId"`
	Title       string  `json:"title"`
	Question    string  `json:"question"`
	Answer      string  `json:"answer"`
	FolderID    *string `json:"folderId,omitempty"`
	Deleted     bool    `json:"deleted,omitempty"`
}

func (p FlashcardPatch) TargetID() string { return p.FlashcardID }
func (p FlashcardPatch) Removes() bool    { return p.Deleted }

func (p FlashcardPatch) Apply(f Flashcard) Flashcard {
	f.Title = p.Title
	f.Question = p.Question
	f.Answer = p.Answer
	f.FolderID = p.FolderID
	return f
}

// FolderPatch carries a rename or a removal
type FolderPatch struct {
	FolderID string  `json:"folderId"`
	Name     *string `json:"name,omitempty"`
	Deleted  bool    `json:"deleted,omitempty"`
}

func (p FolderPatch) TargetID() string { return p.FolderID }
func (p FolderPatch) Removes() bool    { return p.Deleted }

func (p FolderPatch) Apply(f Folder) Folder {
	if p.Name != nil {
		f.Name = *p.Name
	}
	return f
}

// UserPatch carries a role change or a removal
type UserPatch struct {
	UserID  string    `json:"userId"`
	Role    *RoleType `json:"role,omitempty"`
	Deleted bool      `json:"deleted,omitempty"`
}

func (p UserPatch) TargetID() string { return p.UserID }
func (p UserPatch) Removes() bool    { return p.Deleted }

func (p UserPatch) Apply(u User) User {
	if p.Role != nil {
		u.Role = *p.Role
	}
	return u
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
