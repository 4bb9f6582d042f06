// Package diagnostic turns raw assessment sub-scores into a CEFR placement.
package diagnostic

import "math"

// Level is a CEFR proficiency band.
type Level string

// Assignable CEFR levels, lowest to highest.
const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
)

// Area weights of the overall score.
const (
	grammarWeight       = 0.3
	listeningWeight     = 0.3
	pronunciationWeight = 0.4
)

// Qualitative thresholds, independent per area. Scores in [50,70) land in
// neither list.
const (
	strengthThreshold = 70
	weaknessThreshold = 50
)

// CalculateOverallScore computes the weighted overall score from the three
// raw area scores. Inputs are expected in [0,100]; range validation is the
// caller's responsibility. The weighted sum rounds half up.
func CalculateOverallScore(grammar, listening, pronunciation float64) int {
	sum := grammar*grammarWeight + listening*listeningWeight + pronunciation*pronunciationWeight
	return int(math.Floor(sum + 0.5))
}

// ScoreToLevel maps an overall score to its CEFR band. Boundary values
// belong to the lower band: 80 is B2, 81 is C1.
func ScoreToLevel(score int) Level {
	switch {
	case score <= 20:
		return LevelA1
	case score <= 40:
		return LevelA2
	case score <= 60:
		return LevelB1
	case score <= 80:
		return LevelB2
	default:
		return LevelC1
	}
}

// DeriveStrengths returns the pt-BR strength tags for areas scoring at or
// above the strength threshold, always in grammar, listening,
// pronunciation order. An empty list is valid.
func DeriveStrengths(grammar, listening, pronunciation float64) []string {
	strengths := []string{}
	if grammar >= strengthThreshold {
		strengths = append(strengths, "Gramática sólida")
	}
	if listening >= strengthThreshold {
		strengths = append(strengths, "Boa compreensão auditiva")
	}
	if pronunciation >= strengthThreshold {
		strengths = append(strengths, "Pronúncia clara")
	}
	return strengths
}

// DeriveWeaknesses returns the pt-BR weakness tags for areas scoring below
// the weakness threshold, always in grammar, listening, pronunciation
// order. An empty list is valid.
func DeriveWeaknesses(grammar, listening, pronunciation float64) []string {
	weaknesses := []string{}
	if grammar < weaknessThreshold {
		weaknesses = append(weaknesses, "Gramática precisa de atenção")
	}
	if listening < weaknessThreshold {
		weaknesses = append(weaknesses, "Compreensão auditiva precisa de atenção")
	}
	if pronunciation < weaknessThreshold {
		weaknesses = append(weaknesses, "Pronúncia precisa de atenção")
	}
	return weaknesses
}
