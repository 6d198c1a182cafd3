package order

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// Topics whose deliveries remove the order instead of creating it.
const (
	TopicOrdersDelete    = "orders/delete"
	TopicOrdersCancelled = "orders/cancelled"
	TopicOrdersFulfilled = "orders/fulfilled"
)

var deleteTopics = map[string]struct{}{
	TopicOrdersDelete:    {},
	TopicOrdersCancelled: {},
	TopicOrdersFulfilled: {},
}

// IsDeleteTopic reports whether topic is in the delete set. Matching is exact.
func IsDeleteTopic(topic string) bool {
	_, ok := deleteTopics[topic]
	return ok
}

// Normalize turns a raw webhook body and its topic into an Intent.
//
// It fails with ErrInvalidPayload when body is not a single JSON object and
// with ErrMissingOrderID when the object has no usable id.
func Normalize(body []byte, topic string) (Intent, error) {
	payload, err := decodeObject(body)
	if err != nil {
		return Intent{}, err
	}

	orderID, err := orderIDFrom(payload["id"])
	if err != nil {
		return Intent{}, err
	}

	if IsDeleteTopic(topic) {
		return NewDeleteIntent(orderID), nil
	}

	return NewUpsertIntent(UpsertIntent{
		OrderID:      orderID,
		CreatedAt:    passThrough(payload["created_at"]),
		CustomerName: customerName(payload["customer"]),
		Email:        passThrough(payload["email"]),
		Phone:        resolvePhone(payload),
		TotalPrice:   passThrough(payload["total_price"]),
		Currency:     passThrough(payload["currency"]),
	}), nil
}

func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidPayload)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value must be an object", ErrInvalidPayload)
	}
	return obj, nil
}

// orderIDFrom keeps numeric ids exact so that 64-bit upstream ids survive
// without float rounding. Integral numbers are written as plain digits
// (1e3 and 1000.0 both become "1000"); other numbers keep their JSON text.
func orderIDFrom(v any) (string, error) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", ErrMissingOrderID
		}
		return id, nil
	case json.Number:
		return canonicalNumber(id), nil
	case bool:
		return strconv.FormatBool(id), nil
	case nil:
		return "", ErrMissingOrderID
	default:
		return "", fmt.Errorf("%w: id must be a string or a number", ErrMissingOrderID)
	}
}

// maxIDExponent bounds the exponents expanded into digits.
const maxIDExponent = 30

func canonicalNumber(n json.Number) string {
	text := n.String()
	if !strings.ContainsAny(text, ".eE") {
		return text
	}
	if i := strings.IndexAny(text, "eE"); i >= 0 {
		exp, err := strconv.Atoi(text[i+1:])
		if err != nil || exp > maxIDExponent || exp < -maxIDExponent {
			return text
		}
	}
	r, ok := new(big.Rat).SetString(text)
	if !ok || !r.IsInt() {
		return text
	}
	return r.Num().String()
}

func customerName(v any) string {
	if !truthy(v) {
		return UnknownCustomer
	}

	customer, ok := v.(map[string]any)
	if !ok {
		return ""
	}

	first, _ := presentText(customer["first_name"])
	last, _ := presentText(customer["last_name"])
	return strings.TrimSpace(first + " " + last)
}

// phoneLookup yields a phone number and whether it is present.
type phoneLookup func(payload map[string]any) (string, bool)

// phoneLookups is the resolution order for Order.Phone; the first present
// value wins. Empty strings count as absent.
var phoneLookups = []phoneLookup{
	topLevel("phone"),
	nested("shipping_address", "phone"),
	nested("billing_address", "phone"),
}

func resolvePhone(payload map[string]any) *string {
	for _, lookup := range phoneLookups {
		if phone, ok := lookup(payload); ok {
			return &phone
		}
	}
	return nil
}

func topLevel(key string) phoneLookup {
	return func(payload map[string]any) (string, bool) {
		return presentText(payload[key])
	}
}

func nested(object, key string) phoneLookup {
	return func(payload map[string]any) (string, bool) {
		inner, ok := payload[object].(map[string]any)
		if !ok {
			return "", false
		}
		return presentText(inner[key])
	}
}

// presentText returns the text of a truthy scalar. Empty strings, zero,
// false, null and non-scalars are absent.
func presentText(v any) (string, bool) {
	if !truthy(v) {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// passThrough renders a payload value verbatim: strings unquoted, numbers
// and booleans as their JSON text, objects and arrays as raw JSON. Absent
// and null values become nil.
func passThrough(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s = t
	case json.Number:
		s = t.String()
	case bool:
		s = strconv.FormatBool(t)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		s = string(raw)
	}
	return &s
}
