package proxyhttp

// reasonPhrases is the built-in status-code table (§4.6). Any code not
// listed here serialises with an empty reason phrase, which is acceptable
// per spec.
var reasonPhrases = map[int]string{
	200: "OK",
	201: "Created",
	202: "Accepted",
	204: "No Content",
	301: "Moved Permanently",
	302: "Found",
	307: "Temporary Redirect",
	308: "Permanent Redirect",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	408: "Request Timeout",
	413: "Payload Too Large",
	429: "Too Many Requests",
	500: "Internal Server Error",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
}

// ReasonPhrase returns the reason phrase for statusCode, or "" if unknown.
func ReasonPhrase(statusCode int) string {
	return reasonPhrases[statusCode]
}
