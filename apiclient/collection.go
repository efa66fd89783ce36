package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// NoDraft is the draft type of read-only collections.
type NoDraft struct{}

// Collection is the remote collection of one entity kind E, mutated through drafts D.
type Collection[E any, D any] struct {
	client *Client
	name   string

	// listPath builds the list request from the filters; it defaults to base + filters as query params.
	listPath func(filters map[string]string) (string, url.Values, error)
	// decode turns the envelope data of a list into entities; it defaults to decodeList.
	decode func(raw json.RawMessage) ([]E, error)
	// match drops listed entities not matching the filters, for endpoints that ignore them.
	match func(e E, filters map[string]string) bool

	base       string
	createPath func(draft D) (string, url.Values)
	noCreate   bool
	noUpdate   bool
	noDelete   bool
}

func newCollection[E any, D any](client *Client, name, base string) *Collection[E, D] {
	return &Collection[E, D]{client: client, name: name, base: base}
}

func (col *Collection[E, D]) Name() string { return col.name }

func (col *Collection[E, D]) itemPath(id string) string {
	return col.base + "/" + url.PathEscape(strings.TrimSpace(id))
}

func (col *Collection[E, D]) List(ctx context.Context, filters map[string]string) ([]E, error) {
	path, query := col.base, url.Values{}
	if col.listPath != nil {
		var err error
		if path, query, err = col.listPath(filters); err != nil {
			return nil, err
		}
	} else {
		for k, v := range filters {
			if v != "" {
				query.Set(k, v)
			}
		}
	}

	var raw json.RawMessage
	if err := col.client.do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, errors.Wrapf(err, "listing %s", col.name)
	}

	decode := col.decode
	if decode == nil {
		decode = decodeList[E]
	}
	items, err := decode(raw)
	if err != nil {
		return nil, errors.Wrapf(&Error{Kind: KindTransport, Message: "malformed list data", Err: err}, "listing %s", col.name)
	}

	if col.match != nil {
		matched := items[:0]
		for _, e := range items {
			if col.match(e, filters) {
				matched = append(matched, e)
			}
		}
		items = matched
	}
	return items, nil
}

func (col *Collection[E, D]) Create(ctx context.Context, draft D) (E, error) {
	var created E
	if col.noCreate {
		return created, errors.Wrapf(ErrUnsupported, "creating %s", col.name)
	}
	path, query := col.base, url.Values(nil)
	if col.createPath != nil {
		path, query = col.createPath(draft)
	}
	if err := col.client.do(ctx, http.MethodPost, path, query, draft, &created); err != nil {
		return created, errors.Wrapf(err, "creating %s", col.name)
	}
	return created, nil
}

func (col *Collection[E, D]) Update(ctx context.Context, id string, draft D) (E, error) {
	var updated E
	if col.noUpdate {
		return updated, errors.Wrapf(ErrUnsupported, "updating %s", col.name)
	}
	if err := col.client.do(ctx, http.MethodPut, col.itemPath(id), nil, draft, &updated); err != nil {
		return updated, errors.Wrapf(err, "updating %s %s", col.name, id)
	}
	return updated, nil
}

func (col *Collection[E, D]) Delete(ctx context.Context, id string) error {
	if col.noDelete {
		return errors.Wrapf(ErrUnsupported, "deleting %s", col.name)
	}
	if err := col.client.do(ctx, http.MethodDelete, col.itemPath(id), nil, nil, nil); err != nil {
		return errors.Wrapf(err, "deleting %s %s", col.name, id)
	}
	return nil
}

// requireFilter builds a list path from a required filter value, ie: /admin/attendance/session/{session_id}.
func requireFilter(key string, build func(v string) string) func(map[string]string) (string, url.Values, error) {
	return func(filters map[string]string) (string, url.Values, error) {
		v := strings.TrimSpace(filters[key])
		if v == "" {
			return "", nil, errors.Errorf(errMissingFilter, key)
		}
		return build(url.PathEscape(v)), nil, nil
	}
}
