package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEditBufferDisplayRule(t *testing.T) {
	buffer := NewEditBuffer()
	setID := primitive.NewObjectID()

	// No pending text: show the persisted value, or empty when null.
	assert.Equal(t, "", buffer.DisplayWeight(setID, nil))
	assert.Equal(t, "80", buffer.DisplayWeight(setID, f64(80)))
	assert.Equal(t, "62.5", buffer.DisplayWeight(setID, f64(62.5)))
	assert.Equal(t, "", buffer.DisplayReps(setID, nil))
	assert.Equal(t, "8", buffer.DisplayReps(setID, iptr(8)))

	// Pending text wins over the persisted value, verbatim.
	buffer.SetWeightInput(setID, "85.")
	assert.Equal(t, "85.", buffer.DisplayWeight(setID, f64(80)))

	// The empty string is a real override, not absence of one.
	buffer.SetWeightInput(setID, "")
	assert.Equal(t, "", buffer.DisplayWeight(setID, f64(80)))

	// A weight override never leaks into the reps field.
	assert.Equal(t, "8", buffer.DisplayReps(setID, iptr(8)))
}

func TestEditBufferResolve(t *testing.T) {
	buffer := NewEditBuffer()
	setID := primitive.NewObjectID()

	// Nothing buffered: prior values pass through.
	weight, reps := buffer.Resolve(setID, f64(100), iptr(5))
	require.NotNil(t, weight)
	assert.Equal(t, 100.0, *weight)
	require.NotNil(t, reps)
	assert.Equal(t, 5, *reps)

	// Only the overridden field changes.
	buffer.SetWeightInput(setID, "102.5")
	weight, reps = buffer.Resolve(setID, f64(100), iptr(5))
	require.NotNil(t, weight)
	assert.Equal(t, 102.5, *weight)
	require.NotNil(t, reps)
	assert.Equal(t, 5, *reps)

	// Blank text clears the field.
	buffer.SetWeightInput(setID, "   ")
	weight, _ = buffer.Resolve(setID, f64(100), iptr(5))
	assert.Nil(t, weight)

	// Unparseable and negative inputs also clear.
	buffer.SetRepsInput(setID, "lots")
	_, reps = buffer.Resolve(setID, nil, iptr(5))
	assert.Nil(t, reps)
	buffer.SetRepsInput(setID, "-3")
	_, reps = buffer.Resolve(setID, nil, iptr(5))
	assert.Nil(t, reps)
}

func TestEditBufferDrop(t *testing.T) {
	buffer := NewEditBuffer()
	setID := primitive.NewObjectID()

	buffer.SetWeightInput(setID, "50")
	buffer.ToggleDone(setID)
	require.True(t, buffer.IsDone(setID))

	buffer.Drop(setID)
	assert.Equal(t, "", buffer.DisplayWeight(setID, nil))
	assert.False(t, buffer.IsDone(setID))

	weight, _ := buffer.Resolve(setID, f64(42), nil)
	require.NotNil(t, weight)
	assert.Equal(t, 42.0, *weight)
}

func TestEditBufferDoneToggling(t *testing.T) {
	buffer := NewEditBuffer()
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	assert.False(t, buffer.IsDone(a))
	assert.True(t, buffer.ToggleDone(a))
	assert.True(t, buffer.IsDone(a))
	assert.False(t, buffer.IsDone(b))
	assert.False(t, buffer.ToggleDone(a))
	assert.False(t, buffer.IsDone(a))
}
