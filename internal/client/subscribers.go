package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type SubscriberList struct {
	Items []Subscriber `json:"items" yaml:"items"`
	Total int          `json:"total" yaml:"total"`
	Page  int          `json:"page" yaml:"page"`
	Limit int          `json:"limit" yaml:"limit"`
}

type subscriberEnvelope struct {
	Subscriber Subscriber `json:"subscriber"`
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (r subscribeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
	)
}

// Subscribe adds an address to the mailing list. This is the one
// subscriber endpoint exposed to the public site.
func (c *API) Subscribe(ctx context.Context, email string) (Subscriber, error) {
	payload := subscribeRequest{Email: strings.TrimSpace(email)}
	if err := payload.Validate(); err != nil {
		return Subscriber{}, fmt.Errorf("validate subscriber: %w", err)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/subscribers", payload)
	if err != nil {
		return Subscriber{}, err
	}
	var out subscriberEnvelope
	if err := c.do(req, &out); err != nil {
		return Subscriber{}, err
	}
	return out.Subscriber, nil
}

func (c *API) Unsubscribe(ctx context.Context, email string) error {
	payload := subscribeRequest{Email: strings.TrimSpace(email)}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("validate subscriber: %w", err)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/subscribers/unsubscribe", payload)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *API) ListSubscribers(ctx context.Context, page, limit int) (SubscriberList, error) {
	q := url.Values{}
	setPositive(q, "page", page)
	setPositive(q, "limit", limit)
	req, err := c.newRequest(ctx, http.MethodGet, "/subscribers"+encodeQuery(q), nil)
	if err != nil {
		return SubscriberList{}, err
	}
	var out SubscriberList
	if err := c.do(req, &out); err != nil {
		return SubscriberList{}, err
	}
	return out, nil
}

func (c *API) GetSubscriber(ctx context.Context, id string) (Subscriber, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Subscriber{}, fmt.Errorf("subscriber id is required")
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/subscribers/"+url.PathEscape(id), nil)
	if err != nil {
		return Subscriber{}, err
	}
	var out subscriberEnvelope
	if err := c.do(req, &out); err != nil {
		return Subscriber{}, err
	}
	return out.Subscriber, nil
}

type SubscriberUpdate struct {
	Email      *string `json:"email,omitempty"`
	Subscribed *bool   `json:"subscribed,omitempty"`
}

func (c *API) UpdateSubscriber(ctx context.Context, id string, update SubscriberUpdate) (Subscriber, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Subscriber{}, fmt.Errorf("subscriber id is required")
	}
	req, err := c.newJSONRequest(ctx, http.MethodPut, "/subscribers/"+url.PathEscape(id), update)
	if err != nil {
		return Subscriber{}, err
	}
	var out subscriberEnvelope
	if err := c.do(req, &out); err != nil {
		return Subscriber{}, err
	}
	return out.Subscriber, nil
}

func (c *API) DeleteSubscriber(ctx context.Context, id string) (DeleteResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DeleteResponse{}, fmt.Errorf("subscriber id is required")
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/subscribers/"+url.PathEscape(id), nil)
	if err != nil {
		return DeleteResponse{}, err
	}
	var out DeleteResponse
	if err := c.do(req, &out); err != nil {
		return DeleteResponse{}, err
	}
	return out, nil
}
