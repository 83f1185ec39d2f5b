//go:build js && wasm

package session

import (
	"errors"
	"syscall/js"
)

var errNoLocalStorage = errors.New("localStorage is not available")

// LocalStore is a Store backed by window.localStorage.
type LocalStore struct {
	storage js.Value
}

// NewLocalStore binds to window.localStorage.
func NewLocalStore() (*LocalStore, error) {
	ls := js.Global().Get("localStorage")
	if ls.IsUndefined() || ls.IsNull() {
		return nil, errNoLocalStorage
	}
	return &LocalStore{storage: ls}, nil
}

// Get implements Store.
func (l *LocalStore) Get(key string) (v string, ok bool, err error) {
	defer recoverJS(&err)
	item := l.storage.Call("getItem", key)
	if item.IsNull() || item.IsUndefined() {
		return "", false, nil
	}
	return item.String(), true, nil
}

// Set implements Store.
func (l *LocalStore) Set(key, value string) (err error) {
	defer recoverJS(&err)
	l.storage.Call("setItem", key, value)
	return nil
}

// Delete implements Store.
func (l *LocalStore) Delete(key string) (err error) {
	defer recoverJS(&err)
	l.storage.Call("removeItem", key)
	return nil
}

// recoverJS turns a thrown JS exception (quota, private mode) into an error.
func recoverJS(err *error) {
	if r := recover(); r != nil {
		if jsErr, ok := r.(js.Error); ok {
			*err = jsErr
			return
		}
		panic(r)
	}
}
