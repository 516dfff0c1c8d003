package memory

import "quiz-kingdom/internal/domain"

// SampleBank is the built-in question bank used when no database is configured.
func SampleBank() map[string][]domain.Question {
	return map[string][]domain.Question{
		"dragons": {
			{ID: "dragons-1", Category: "dragons", Text: "What do dragons traditionally guard?", Choices: []string{"Bridges", "Hoards of gold", "Wells", "Libraries"}, CorrectAnswer: 1, Points: domain.DefaultPoints},
			{ID: "dragons-2", Category: "dragons", Text: "Which element is a fire drake weakest against?", Choices: []string{"Water", "Fire", "Stone"}, CorrectAnswer: 0, Points: domain.DefaultPoints},
			{ID: "dragons-3", Category: "dragons", Text: "What is a young dragon called?", Choices: []string{"Whelp", "Foal", "Cub", "Kit"}, CorrectAnswer: 0, TimeLimit: 15, Points: domain.DefaultPoints},
		},
		"potions": {
			{ID: "potions-1", Category: "potions", Text: "Which color is a healing potion in most kingdoms?", Choices: []string{"Red", "Blue", "Green"}, CorrectAnswer: 0, Points: domain.DefaultPoints},
			{ID: "potions-2", Category: "potions", Text: "What does a mana potion restore?", Choices: []string{"Health", "Magic", "Stamina", "Gold"}, CorrectAnswer: 1, Points: domain.DefaultPoints},
			{ID: "potions-3", Category: "potions", Text: "Which herb is the base of an invisibility draught?", Choices: []string{"Nightshade", "Moonpetal", "Mint"}, CorrectAnswer: 1, Points: 1500},
		},
		"kingdoms": {
			{ID: "kingdoms-1", Category: "kingdoms", Text: "Who sits on the throne of a kingdom?", Choices: []string{"A blacksmith", "The monarch", "A bard"}, CorrectAnswer: 1, Points: domain.DefaultPoints},
			{ID: "kingdoms-2", Category: "kingdoms", Text: "What surrounds a castle for defense?", Choices: []string{"A moat", "A meadow", "A market", "A maze"}, CorrectAnswer: 0, Points: domain.DefaultPoints},
		},
	}
}
