package coinpayments

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const reportSubject = "CoinPayments.net Invalid IPN"

// Field is one posted key=value pair, kept in the order it was received.
type Field struct {
	Key   string
	Value string
}

// parseFields splits a form body into its pairs without reordering them.
// Pairs that fail to unescape are kept verbatim.
func parseFields(body []byte) []Field {
	var fields []Field
	for _, pair := range strings.Split(string(body), "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if uk, err := url.QueryUnescape(k); err == nil {
			k = uk
		}
		if uv, err := url.QueryUnescape(v); err == nil {
			v = uv
		}
		fields = append(fields, Field{Key: k, Value: v})
	}
	return fields
}

// Report describes a rejected callback for the debug log and debug email.
type Report struct {
	ID        uuid.UUID
	Message   string
	Fields    []Field
	CreatedAt time.Time
}

func NewReport(message string, fields []Field, now time.Time) Report {
	return Report{
		ID:        uuid.New(),
		Message:   message,
		Fields:    fields,
		CreatedAt: now,
	}
}

func (r Report) String() string {
	var b strings.Builder
	b.WriteString("Error Message: ")
	b.WriteString(r.Message)
	b.WriteString("\n\nPOST Fields\n\n")
	for _, f := range r.Fields {
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
		b.WriteByte('\n')
	}
	return b.String()
}
