package posts

import (
	"errors"
	"fmt"
)

var (
	ErrBlogRequired     = errors.New("posts: blog id is required")
	ErrTitleRequired    = errors.New("posts: title is required")
	ErrCategoryRequired = errors.New("posts: exactly one category is required")
	ErrUnknownBlog      = errors.New("posts: blog page does not exist")
)

// NotFoundError reports a missing post row.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e == nil || e.Key == "" {
		return "posts: not found"
	}
	return fmt.Sprintf("posts: not found: %s", e.Key)
}
