// Package model holds the phonebook's entities and the request
// payloads bound from HTTP requests.
package model
