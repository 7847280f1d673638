package notify

import (
	"fmt"
	"mime"
)

func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", encodeHeader(name), addr)
}

func encodeHeader(s string) string {
	return mime.QEncoding.Encode("utf-8", s)
}
