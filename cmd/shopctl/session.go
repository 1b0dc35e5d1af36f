package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/pkg/clientstore"
	"github.com/Skotchmaster/storefront/pkg/storeclient"
)

const sessionNamespace = "session"

func loadSession(s kv) (storeclient.Session, error) {
	data, err := s.Get(sessionNamespace)
	if errors.Is(err, clientstore.ErrNotFound) {
		return storeclient.Session{}, nil
	}
	if err != nil {
		return storeclient.Session{}, fmt.Errorf("read session: %w", err)
	}
	var sess storeclient.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return storeclient.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

func saveSession(s kv, sess storeclient.Session) error {
	if !sess.LoggedIn() {
		if err := s.Delete(sessionNamespace); err != nil && !errors.Is(err, clientstore.ErrNotFound) {
			return err
		}
		return nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.Put(sessionNamespace, data)
}
