package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/useattune/attune/client"
)

// Category names one class of chat failure. Every failed turn lands in
// exactly one category; the category picks the persona fallback line and the
// notice shown to the user.
type Category string

const (
	// CategoryTimeout: no result inside the turn deadline.
	CategoryTimeout Category = "TIMEOUT"
	// CategoryNetworkError: the request never completed at the transport level.
	CategoryNetworkError Category = "NETWORK_ERROR"
	// CategoryInvalidRequest: the input was rejected, locally or with HTTP 400.
	CategoryInvalidRequest Category = "INVALID_REQUEST"
	// CategoryServiceMisconfigured: the server refused with 401/403, which for
	// a self-hosted deployment means credentials or keys are set up wrong.
	CategoryServiceMisconfigured Category = "SERVICE_MISCONFIGURED"
	// CategoryRateLimited: HTTP 429, the daily allowance is spent.
	CategoryRateLimited Category = "RATE_LIMITED"
	// CategoryServerError: HTTP 5xx or any status outside the known set.
	CategoryServerError Category = "SERVER_ERROR"
	// CategoryMalformedResponse: a 200 whose body carried no usable reply.
	CategoryMalformedResponse Category = "MALFORMED_RESPONSE"
	// CategoryContentSafety: the message was declined by the safety screen.
	CategoryContentSafety Category = "CONTENT_SAFETY"
)

// Error is one failed chat turn. Message is already user-facing; Err keeps
// the underlying cause for logs.
type Error struct {
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chat: %s: %v", e.Category, e.Err)
	}
	return fmt.Sprintf("chat: %s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Classify maps an error from the transport into its category. The order
// matters: the wire code wins over the status, the status over transport
// guesses, and anything unrecognized is treated as a network failure because
// nothing reached us to say otherwise.
func Classify(err error) Category {
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == "content_safety" {
			return CategoryContentSafety
		}
		switch {
		case apiErr.Status == 400:
			return CategoryInvalidRequest
		case apiErr.Status == 401 || apiErr.Status == 403:
			return CategoryServiceMisconfigured
		case apiErr.Status == 429:
			return CategoryRateLimited
		default:
			return CategoryServerError
		}
	}
	if errors.Is(err, client.ErrMalformedReply) {
		return CategoryMalformedResponse
	}
	return CategoryNetworkError
}

// noticeText is the short banner line for a category. The persona fallback
// message carries the warmth; this line carries the facts.
func noticeText(cat Category) string {
	switch cat {
	case CategoryTimeout:
		return "That took too long. Your message is kept, try again when you're ready."
	case CategoryNetworkError:
		return "Couldn't reach the server. Check your connection and retry."
	case CategoryInvalidRequest:
		return "That message can't be sent as written."
	case CategoryServiceMisconfigured:
		return "The chat service isn't set up correctly. Check the server configuration."
	case CategoryRateLimited:
		return "You've used today's conversation allowance. It resets tomorrow."
	case CategoryServerError:
		return "The server hit a problem. Your message is kept, retry in a moment."
	case CategoryMalformedResponse:
		return "The reply came back garbled. Retrying usually fixes this."
	case CategoryContentSafety:
		return "That topic is outside what your guide can help with."
	default:
		return "Something went wrong."
	}
}
