package wink

import (
	"context"
	"net/http"
	"net/url"
)

func (d *Device) sharable() error {
	if !d.schema.Sharable {
		return &ConfigError{Kind: string(d.schema.Kind), Reason: "devices cannot be shared"}
	}
	return nil
}

// Users lists the accounts the device is shared with.
func (d *Device) Users(ctx context.Context) ([]Document, error) {
	if err := d.sharable(); err != nil {
		return nil, err
	}
	doc, err := d.api.Call(ctx, http.MethodGet, d.Path()+"/users", nil)
	if err != nil {
		return nil, err
	}
	return documentList(doc["data"])
}

// Share grants the account registered to email access to the device.
func (d *Device) Share(ctx context.Context, email string) error {
	if err := d.sharable(); err != nil {
		return err
	}
	_, err := d.api.Call(ctx, http.MethodPost, d.Path()+"/users", Document{"email": email})
	return err
}

// Unshare revokes access for email.
func (d *Device) Unshare(ctx context.Context, email string) error {
	if err := d.sharable(); err != nil {
		return err
	}
	_, err := d.api.Call(ctx, http.MethodDelete, d.Path()+"/users/"+url.PathEscape(email), nil)
	return err
}
