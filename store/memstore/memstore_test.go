package memstore

import (
	"testing"

	"github.com/mbolis/quick-form/store"
	"github.com/mbolis/quick-form/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New()
	})
}
