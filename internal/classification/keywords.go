package classification

import "github.com/Veraticus/finsight/internal/model"

// Difficulty describes how hard it is to cut spending in a category.
type Difficulty string

// Difficulty levels.
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// CategoryProfile holds the static data attached to a spending category.
type CategoryProfile struct {
	Name       model.Category
	Icon       string
	Difficulty Difficulty
	Keywords   []string
	Tips       []string
	SavingRate float64
}

// defaultSavingRate applies to categories without a profile.
const defaultSavingRate = 0.15

// DefaultProfiles returns the keyword table in scoring order. Earlier entries
// win ties.
func DefaultProfiles() []CategoryProfile {
	return []CategoryProfile{
		{
			Name:       model.CategoryFood,
			Icon:       "🍽️",
			Difficulty: DifficultyEasy,
			SavingRate: 0.25,
			Keywords: []string{
				"supermercado", "restaurante", "comida", "lanche", "padaria", "açougue", "peixaria",
				"mercearia", "takeaway", "delivery", "pizza", "hambúrguer", "café", "bar",
			},
			Tips: []string{
				"Cook at home more often - savings of up to 40%",
				"Shop with a list to avoid impulse purchases",
				"Buy seasonal produce - cheaper and fresher",
				"Use discount coupons and promotions",
			},
		},
		{
			Name:       model.CategoryTransport,
			Icon:       "🚗",
			Difficulty: DifficultyMedium,
			SavingRate: 0.35,
			Keywords: []string{
				"combustível", "gasolina", "uber", "taxi", "autocarro", "metro", "comboio",
				"estacionamento", "portagem", "viagem", "bilhete", "passe",
			},
			Tips: []string{
				"Use public transport - savings of up to 60%",
				"Share rides with colleagues",
				"Consider cycling for short distances",
				"Plan routes to save fuel",
			},
		},
		{
			Name:       model.CategoryHealth,
			Icon:       "🏥",
			Difficulty: DifficultyMedium,
			SavingRate: 0.20,
			Keywords: []string{
				"farmácia", "médico", "hospital", "dentista", "exame", "medicamento", "consulta",
				"análises", "clínica", "seguro saúde",
			},
			Tips: []string{
				"Prefer generic medicines - savings of up to 50%",
				"See your family doctor first",
				"Keep up with regular check-ups to prevent bigger costs",
				"Compare medicine prices",
			},
		},
		{
			Name:       model.CategoryLeisure,
			Icon:       "🎭",
			Difficulty: DifficultyEasy,
			SavingRate: 0.30,
			Keywords: []string{
				"cinema", "teatro", "bar", "festa", "viagem", "entretenimento", "concerto", "jogo",
				"hobby", "diversão", "parque", "praia",
			},
			Tips: []string{
				"Look for free events in your city",
				"Use student or senior discounts",
				"Host activities at home with friends",
				"Take advantage of cinema and theatre promotions",
			},
		},
		{
			Name:       model.CategoryClothing,
			Icon:       "👕",
			Difficulty: DifficultyEasy,
			SavingRate: 0.40,
			Keywords: []string{
				"roupa", "sapatos", "shopping", "loja", "vestuário", "acessórios", "moda", "calças",
				"camisa", "vestido",
			},
			Tips: []string{
				"Buy during sales - savings of up to 70%",
				"Consider second-hand shops",
				"Invest in basic, versatile pieces",
				"Take care of clothes so they last longer",
			},
		},
		{
			Name:       model.CategoryHousing,
			Icon:       "🏠",
			Difficulty: DifficultyHard,
			SavingRate: 0.15,
			Keywords: []string{
				"luz", "água", "gás", "internet", "telefone", "limpeza", "renda", "condomínio",
				"reparações", "móveis", "decoração",
			},
			Tips: []string{
				"Compare energy suppliers",
				"Switch to LED bulbs - savings of up to 80%",
				"Renegotiate contracts every year",
				"Do preventive maintenance",
			},
		},
		{
			Name:       model.CategoryEducation,
			Icon:       "📚",
			Difficulty: DifficultyMedium,
			SavingRate: 0.20,
			Keywords: []string{
				"livro", "curso", "escola", "universidade", "formação", "material escolar",
				"propinas", "aulas",
			},
			Tips: []string{
				"Use public libraries",
				"Look for free online courses",
				"Buy used books",
				"Share materials with classmates",
			},
		},
	}
}

// otherProfile describes the fallback category. It carries no keywords.
var otherProfile = CategoryProfile{
	Name:       model.CategoryOther,
	Icon:       "📊",
	Difficulty: DifficultyMedium,
	SavingRate: 0.10,
	Tips: []string{
		"Review uncategorized expenses at the end of each month",
		"Cancel subscriptions you no longer use",
		"Set a monthly cap for miscellaneous purchases",
	},
}
