package ecat_test

import (
	"testing"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/pkg/sim"
	"github.com/stretchr/testify/assert"
)

func TestExchange(t *testing.T) {
	device := sim.Default()
	master := sim.NewMaster(device)
	bm := ecat.NewBusManager(master)
	assert.Equal(t, master, bm.Master())

	t.Run("without domain", func(t *testing.T) {
		assert.Nil(t, bm.Exchange())
		assert.EqualValues(t, 1, bm.Cycles())
		assert.EqualValues(t, 1, master.Cycles())
	})
	t.Run("domain not activated", func(t *testing.T) {
		domain, err := master.CreateDomain()
		assert.Nil(t, err)
		bm.SetDomain(domain)
		assert.ErrorIs(t, bm.Exchange(), ecat.ErrNotActivated)
		assert.EqualValues(t, 1, bm.Cycles())
		assert.Nil(t, master.Activate())
		assert.Nil(t, bm.Exchange())
		assert.EqualValues(t, 2, bm.Cycles())
		bm.SetDomain(nil)
		assert.Nil(t, bm.Domain())
	})
	t.Run("released master", func(t *testing.T) {
		assert.Nil(t, master.Release())
		assert.ErrorIs(t, bm.Exchange(), ecat.ErrReleased)
	})
}
