package isa

// Comment is a free-form typed annotation attached to an entity.
type Comment struct {
	Type    string `json:"type" yaml:"type"`
	Content string `json:"content" yaml:"content"`
}

// Commentable holds the ordered comments of an entity. Multiple comments of
// the same type are kept as separate entries.
type Commentable struct {
	comments []Comment
}

// AddComment appends a comment.
func (c *Commentable) AddComment(commentType, content string) {
	c.comments = append(c.comments, Comment{Type: commentType, Content: content})
}

// Comments returns the comments in insertion order.
func (c *Commentable) Comments() []Comment {
	return c.comments
}
