package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreSumsHitWeights(t *testing.T) {
	signals := []Signal{
		{Name: "a", Weight: 25, Hit: true},
		{Name: "b", Weight: 20, Hit: false},
		{Name: "c", Weight: 15, Hit: true},
	}
	assert.Equal(t, 40.0, Score(signals))
}

func TestScoreCappedAt100(t *testing.T) {
	signals := []Signal{
		{Name: "a", Weight: 60, Hit: true},
		{Name: "b", Weight: 60, Hit: true},
	}
	assert.Equal(t, 100.0, Score(signals))
}

func TestScenarioWeightsSumTo100(t *testing.T) {
	all := breakoutSignals(true, true, true, true, true, true)
	assert.Equal(t, 100.0, Score(all))

	all = pullbackSignals(true, true, true, true, true, true)
	assert.Equal(t, 100.0, Score(all))
}

func TestSignalContributionsAreIndependent(t *testing.T) {
	base := Score(breakoutSignals(false, false, false, false, false, false))
	assert.Zero(t, base)

	one := Score(breakoutSignals(true, false, false, false, false, false))
	assert.Equal(t, 25.0, one)

	two := Score(breakoutSignals(true, true, false, false, false, false))
	assert.Equal(t, 45.0, two)
}
