package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	tr := NewTracker()
	assert.EqualValues(t, 0, tr.Wins("alice"))
	assert.EqualValues(t, 0, tr.Losses("alice"))

	tr.RecordWin("alice")
	tr.RecordWin("alice")
	tr.RecordLoss("alice")
	tr.RecordLoss("bob")

	assert.EqualValues(t, 2, tr.Wins("alice"))
	assert.EqualValues(t, 1, tr.Losses("alice"))
	assert.EqualValues(t, 0, tr.Wins("bob"))
	assert.EqualValues(t, 1, tr.Losses("bob"))
}

func TestTracker_Concurrent(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.RecordWin("alice")
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 100, tr.Wins("alice"))
}
