package order

import (
	"testing"

	"OrderDesk/pkg/pointers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Upsert(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		body     string
		topic    string
		expected UpsertIntent
	}{
		{
			name: "should derive every field from a full creation payload",
			body: `{"id": 123, "customer": {"first_name":"Ann","last_name":"Lee"}, "email":"a@x.com",
				"total_price":"19.99","currency":"USD","created_at":"2024-01-01T00:00:00Z"}`,
			expected: UpsertIntent{
				OrderID:      "123",
				CreatedAt:    pointers.Ptr("2024-01-01T00:00:00Z"),
				CustomerName: "Ann Lee",
				Email:        pointers.Ptr("a@x.com"),
				TotalPrice:   pointers.Ptr("19.99"),
				Currency:     pointers.Ptr("USD"),
			},
		},
		{
			name:     "should keep large numeric ids exact",
			body:     `{"id": 820982911946154508}`,
			topic:    "orders/create",
			expected: UpsertIntent{OrderID: "820982911946154508", CustomerName: UnknownCustomer},
		},
		{
			name:     "should write integral exponent ids as plain digits",
			body:     `{"id": 1e3}`,
			expected: UpsertIntent{OrderID: "1000", CustomerName: UnknownCustomer},
		},
		{
			name:     "should drop a zero fraction from integral ids",
			body:     `{"id": 42.0}`,
			expected: UpsertIntent{OrderID: "42", CustomerName: UnknownCustomer},
		},
		{
			name:     "should keep fractional ids as written",
			body:     `{"id": 1.5}`,
			expected: UpsertIntent{OrderID: "1.5", CustomerName: UnknownCustomer},
		},
		{
			name:     "should not expand huge exponents",
			body:     `{"id": 1e400}`,
			expected: UpsertIntent{OrderID: "1e400", CustomerName: UnknownCustomer},
		},
		{
			name:     "should use string ids as is",
			body:     `{"id": "gid://shopify/Order/1"}`,
			expected: UpsertIntent{OrderID: "gid://shopify/Order/1", CustomerName: UnknownCustomer},
		},
		{
			name:     "should use Unknown when customer is null",
			body:     `{"id": 1, "customer": null}`,
			expected: UpsertIntent{OrderID: "1", CustomerName: UnknownCustomer},
		},
		{
			name:     "should trim when only first name is present",
			body:     `{"id": 1, "customer": {"first_name": "Ann"}}`,
			expected: UpsertIntent{OrderID: "1", CustomerName: "Ann"},
		},
		{
			name:     "should trim when only last name is present",
			body:     `{"id": 1, "customer": {"first_name": null, "last_name": "Lee"}}`,
			expected: UpsertIntent{OrderID: "1", CustomerName: "Lee"},
		},
		{
			name:     "should produce an empty name for an empty customer",
			body:     `{"id": 1, "customer": {}}`,
			expected: UpsertIntent{OrderID: "1", CustomerName: ""},
		},
		{
			name:     "should render numeric pass-through fields as text",
			body:     `{"id": 1, "total_price": 19.90, "email": null}`,
			expected: UpsertIntent{OrderID: "1", CustomerName: UnknownCustomer, TotalPrice: pointers.Ptr("19.90")},
		},
		{
			name:     "should keep empty strings in pass-through fields",
			body:     `{"id": 1, "email": ""}`,
			expected: UpsertIntent{OrderID: "1", CustomerName: UnknownCustomer, Email: pointers.Ptr("")},
		},
		{
			name:     "should route unknown topics to upsert",
			body:     `{"id": 7}`,
			topic:    "orders/paid",
			expected: UpsertIntent{OrderID: "7", CustomerName: UnknownCustomer},
		},
		{
			name:     "should match delete topics exactly",
			body:     `{"id": 7}`,
			topic:    "ORDERS/DELETE",
			expected: UpsertIntent{OrderID: "7", CustomerName: UnknownCustomer},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			intent, err := Normalize([]byte(tc.body), tc.topic)

			// then
			require.NoError(t, err)
			assert.Equal(t, KindUpsert, intent.Kind)
			assert.Nil(t, intent.Delete)
			require.NotNil(t, intent.Upsert)
			assert.Equal(t, tc.expected, *intent.Upsert)
		})
	}
}

func TestNormalize_Phone(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		body     string
		expected *string
	}{
		{
			name:     "should be nil when no phone is present",
			body:     `{"id": 1}`,
			expected: nil,
		},
		{
			name:     "should fall back to shipping address phone",
			body:     `{"id": 1, "shipping_address": {"phone": "555-0101"}}`,
			expected: pointers.Ptr("555-0101"),
		},
		{
			name:     "should prefer top-level phone over shipping address",
			body:     `{"id": 1, "phone": "555-0100", "shipping_address": {"phone": "555-0101"}}`,
			expected: pointers.Ptr("555-0100"),
		},
		{
			name:     "should fall back to billing address phone",
			body:     `{"id": 1, "shipping_address": {"phone": null}, "billing_address": {"phone": "555-0102"}}`,
			expected: pointers.Ptr("555-0102"),
		},
		{
			name:     "should treat an empty top-level phone as absent",
			body:     `{"id": 1, "phone": "", "shipping_address": {"phone": "555-0101"}}`,
			expected: pointers.Ptr("555-0101"),
		},
		{
			name:     "should be nil when every phone is empty",
			body:     `{"id": 1, "phone": "", "shipping_address": {"phone": ""}, "billing_address": {"phone": ""}}`,
			expected: nil,
		},
		{
			name:     "should ignore a non-object shipping address",
			body:     `{"id": 1, "shipping_address": "somewhere", "billing_address": {"phone": "555-0102"}}`,
			expected: pointers.Ptr("555-0102"),
		},
		{
			name:     "should skip a non-scalar top-level phone",
			body:     `{"id": 1, "phone": {"n": "1"}, "shipping_address": {"phone": "555"}}`,
			expected: pointers.Ptr("555"),
		},
		{
			name:     "should be nil when the only phone is an array",
			body:     `{"id": 1, "phone": ["555-0100"]}`,
			expected: nil,
		},
		{
			name:     "should render numeric phones as text",
			body:     `{"id": 1, "phone": 5550100}`,
			expected: pointers.Ptr("5550100"),
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			intent, err := Normalize([]byte(tc.body), "")

			// then
			require.NoError(t, err)
			require.NotNil(t, intent.Upsert)
			assert.Equal(t, tc.expected, intent.Upsert.Phone)
		})
	}
}

func TestNormalize_Delete(t *testing.T) {
	t.Parallel()

	for _, topic := range []string{TopicOrdersDelete, TopicOrdersCancelled, TopicOrdersFulfilled} {
		topic := topic
		t.Run("should produce delete intent for "+topic, func(t *testing.T) {
			t.Parallel()

			// when
			intent, err := Normalize([]byte(`{"id": 450789469, "customer": {"first_name": "Ann"}}`), topic)

			// then
			require.NoError(t, err)
			assert.Equal(t, NewDeleteIntent("450789469"), intent)
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		body        string
		topic       string
		expectedErr error
	}{
		{name: "should reject malformed JSON", body: `{"id":`, expectedErr: ErrInvalidPayload},
		{name: "should reject an empty body", body: ``, expectedErr: ErrInvalidPayload},
		{name: "should reject a top-level array", body: `[{"id": 1}]`, expectedErr: ErrInvalidPayload},
		{name: "should reject a top-level string", body: `"order"`, expectedErr: ErrInvalidPayload},
		{name: "should reject a top-level null", body: `null`, expectedErr: ErrInvalidPayload},
		{name: "should reject trailing data", body: `{"id": 1} {"id": 2}`, expectedErr: ErrInvalidPayload},
		{name: "should reject a missing id", body: `{"email": "a@x.com"}`, expectedErr: ErrMissingOrderID},
		{name: "should reject a null id", body: `{"id": null}`, expectedErr: ErrMissingOrderID},
		{name: "should reject an empty id", body: `{"id": ""}`, expectedErr: ErrMissingOrderID},
		{name: "should reject an object id", body: `{"id": {"value": 1}}`, expectedErr: ErrMissingOrderID},
		{name: "should reject a missing id on delete topics", body: `{}`, topic: TopicOrdersDelete, expectedErr: ErrMissingOrderID},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			intent, err := Normalize([]byte(tc.body), tc.topic)

			// then
			require.ErrorIs(t, err, tc.expectedErr)
			assert.Equal(t, Intent{}, intent)
		})
	}

	t.Run("missing id should be a validation error", func(t *testing.T) {
		_, err := Normalize([]byte(`{}`), "")
		assert.ErrorIs(t, err, ErrValidation)
		assert.NotErrorIs(t, err, ErrInvalidPayload)
	})
}
