package model

// AccessToken is the object attached to bearer tokens. The user id is the
// token subject.
type AccessToken struct {
	Name string `json:"name,omitempty"`
}
