package common

// AccessTokenHeaderName is the HTTP header used to carry the session token
// on authenticated ledger requests.
const AccessTokenHeaderName = "Authorization"
