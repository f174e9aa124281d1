package relay

import "net/http"

// The upstream's bot detection keys on this exact header family. Keep the
// values consistent with one another: the client hints must describe the
// same browser as the User-Agent.
const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	browserClientUA  = `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`
)

func setBrowserHeaders(h http.Header, origin string) {
	h.Set("User-Agent", browserUserAgent)
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")
	h.Set("Referer", origin+"/")
	h.Set("Origin", origin)
	h.Set("X-Requested-With", "XMLHttpRequest")
	h.Set("Sec-Ch-Ua", browserClientUA)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
}
