package storage

import "fmt"

// Command is a mutation whose parameters were fully resolved by the caller
// (prompts answered, confirmation given). Apply runs it against a store.
type Command interface {
	Apply(s *Storage) error
	Describe() string
}

// AddCmd adds a topic with a fresh schedule.
type AddCmd struct {
	Name, Subject string
}

func (c AddCmd) Apply(s *Storage) error {
	_, err := s.AddTopic(c.Name, c.Subject)
	return err
}

func (c AddCmd) Describe() string { return fmt.Sprintf("Added %q", c.Name) }

// EditCmd replaces a topic's editable fields.
type EditCmd struct {
	ID                   string
	Name, Subject, Notes string
}

func (c EditCmd) Apply(s *Storage) error {
	_, err := s.EditTopic(c.ID, c.Name, c.Subject, c.Notes)
	return err
}

func (c EditCmd) Describe() string { return fmt.Sprintf("Updated %q", c.Name) }

// DeleteCmd removes a topic. Name is only used for the description.
type DeleteCmd struct {
	ID, Name string
}

func (c DeleteCmd) Apply(s *Storage) error { return s.DeleteTopic(c.ID) }

func (c DeleteCmd) Describe() string { return fmt.Sprintf("Deleted %q", c.Name) }

// CompleteCmd sets or clears completion of one review.
type CompleteCmd struct {
	ID     string
	Review int
	Done   bool
	Name   string
}

func (c CompleteCmd) Apply(s *Storage) error { return s.SetCompleted(c.ID, c.Review, c.Done) }

func (c CompleteCmd) Describe() string {
	if c.Done {
		return fmt.Sprintf("Review %d of %q done", c.Review+1, c.Name)
	}
	return fmt.Sprintf("Review %d of %q reopened", c.Review+1, c.Name)
}

// ImportCmd replaces or merges the topic list.
type ImportCmd struct {
	Topics []Topic
	Merge  bool

	// Added is set by Apply to the number of topics stored.
	Added int
}

func (c *ImportCmd) Apply(s *Storage) error {
	if c.Merge {
		n, err := s.ImportMerge(c.Topics)
		c.Added = n
		return err
	}
	if err := s.ImportReplace(c.Topics); err != nil {
		return err
	}
	c.Added = len(c.Topics)
	return nil
}

func (c *ImportCmd) Describe() string {
	if c.Merge {
		return fmt.Sprintf("Merged %d of %d topics", c.Added, len(c.Topics))
	}
	return fmt.Sprintf("Replaced with %d topics", c.Added)
}
