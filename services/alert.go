package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/moffa90/go-legacydfu/gatt"
)

// AlertCategory is a New Alert category ID.
type AlertCategory byte

// Alert categories.
const (
	AlertSimple       AlertCategory = 0x00
	AlertEmail        AlertCategory = 0x01
	AlertNews         AlertCategory = 0x02
	AlertCall         AlertCategory = 0x03
	AlertMissedCall   AlertCategory = 0x04
	AlertSMS          AlertCategory = 0x05
	AlertVoiceMail    AlertCategory = 0x06
	AlertSchedule     AlertCategory = 0x07
	AlertHighPriority AlertCategory = 0x08
	AlertInstantMsg   AlertCategory = 0x09
)

// maxAlertText is the text budget InfiniTime accepts after the two header bytes.
const maxAlertText = 100

// Alert writes to the Alert Notification service (0x1811).
type Alert struct {
	access gatt.CharacteristicAccess
}

// NewAlert wraps access.
func NewAlert(access gatt.CharacteristicAccess) *Alert {
	return &Alert{access: access}
}

// Send writes a single new alert.
func (a *Alert) Send(ctx context.Context, category AlertCategory, title, body string) error {
	if err := a.access.WriteCharacteristic(ctx, NewAlertUUID, EncodeNewAlert(category, title, body)); err != nil {
		return fmt.Errorf("write new alert: %w", err)
	}
	return nil
}

// EncodeNewAlert builds a New Alert value. Title and body are separated by a
// NUL byte and the text is truncated to fit, never inside a UTF-8 sequence.
//
// Layout:
//
//	[CATEGORY][COUNT=1][TITLE]0x00[BODY]
func EncodeNewAlert(category AlertCategory, title, body string) []byte {
	text := append([]byte(title), 0x00)
	text = append(text, body...)
	if len(text) > maxAlertText {
		cut := maxAlertText
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	v := make([]byte, 0, 2+len(text))
	v = append(v, byte(category), 0x01)
	return append(v, text...)
}
