package repository

import (
	"errors"
	"strings"
	"testing"

	"github.com/iliyamo/live-waitlist/internal/model"
)

func strptr(s string) *string { return &s }

func TestNewEntryValidate(t *testing.T) {
	cases := []struct {
		name    string
		entry   NewEntry
		wantMsg string // "" means valid
	}{
		{
			name:  "sms with phone",
			entry: NewEntry{Name: "Dana", Phone: strptr("+15550100"), Notify: model.NotifySMS},
		},
		{
			name:  "email with email",
			entry: NewEntry{Name: "Dana", Email: strptr("dana@example.com"), Notify: model.NotifyEmail},
		},
		{
			name:  "both with only phone",
			entry: NewEntry{Name: "Dana", Phone: strptr("+15550100"), Notify: model.NotifyBoth},
		},
		{
			name:  "both with only email",
			entry: NewEntry{Name: "Dana", Email: strptr("dana@example.com"), Notify: model.NotifyBoth},
		},
		{
			name:    "missing name",
			entry:   NewEntry{Name: "  ", Phone: strptr("+15550100"), Notify: model.NotifySMS},
			wantMsg: "please enter your name",
		},
		{
			name:    "sms without phone",
			entry:   NewEntry{Name: "Dana", Notify: model.NotifySMS},
			wantMsg: "add a phone number for SMS",
		},
		{
			name:    "sms with blank phone",
			entry:   NewEntry{Name: "Dana", Phone: strptr("  "), Notify: model.NotifySMS},
			wantMsg: "add a phone number for SMS",
		},
		{
			name:    "email without email",
			entry:   NewEntry{Name: "Dana", Phone: strptr("+15550100"), Notify: model.NotifyEmail},
			wantMsg: "add an email address",
		},
		{
			name:    "both without any contact",
			entry:   NewEntry{Name: "Dana", Notify: model.NotifyBoth},
			wantMsg: "add at least one contact method",
		},
		{
			name:    "no notify choice",
			entry:   NewEntry{Name: "Dana", Phone: strptr("+15550100")},
			wantMsg: "please choose a notification method",
		},
		{
			name:    "unknown notify choice",
			entry:   NewEntry{Name: "Dana", Phone: strptr("+15550100"), Notify: "pigeon"},
			wantMsg: "unknown notification method",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.entry.Validate()
			if c.wantMsg == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error %v does not wrap ErrValidation", err)
			}
			if !strings.Contains(err.Error(), c.wantMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), c.wantMsg)
			}
		})
	}
}
