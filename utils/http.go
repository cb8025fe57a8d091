// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound calls (notification service, profile
// service). The timeout keeps best-effort calls from holding up requests.
var HTTPClient = &http.Client{
	Timeout: 10 * time.Second,
}
