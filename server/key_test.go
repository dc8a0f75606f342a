package server_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/SchnorcherSepp/blobbench/server"
)

func TestValidateKey(t *testing.T) {
	ok := strings.Repeat("0123456789abcdef", 4)
	if err := server.ValidateKey(ok); err != nil {
		t.Fatal(err)
	}

	invalid := []string{
		"",
		ok[:63],
		ok + "0",
		strings.ToUpper(ok),
		"../" + ok[3:],
		ok[:62] + "/x",
		ok[:63] + "g",
	}
	for _, k := range invalid {
		if err := server.ValidateKey(k); !errors.Is(err, server.ErrInvalidKey) {
			t.Errorf("%q: wrong error: %v", k, err)
		}
	}
}
