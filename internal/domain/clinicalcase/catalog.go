package clinicalcase

import "sync"

// Catalog is the in-memory clinical-case bank, seeded at process start and
// extended by professor imports.
type Catalog struct {
	mu    sync.RWMutex
	cases []ClinicalCase
	byID  map[string]ClinicalCase
}

func NewCatalog(cases []ClinicalCase) *Catalog {
	byID := make(map[string]ClinicalCase, len(cases))
	for _, c := range cases {
		byID[c.ID] = c
	}
	return &Catalog{cases: cases, byID: byID}
}

// Default returns the built-in case bank.
func Default() *Catalog {
	return NewCatalog(seed)
}

func (c *Catalog) Get(id string) (ClinicalCase, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cc, ok := c.byID[id]
	return cc, ok
}

func (c *Catalog) All() []ClinicalCase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ClinicalCase, len(c.cases))
	copy(out, c.cases)
	return out
}

// Add appends a case, skipping IDs already present. Reports whether the
// case was added.
func (c *Catalog) Add(cc ClinicalCase) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[cc.ID]; ok {
		return false
	}
	c.cases = append(c.cases, cc)
	c.byID[cc.ID] = cc
	return true
}

// PickNext returns the first unattempted case at or below the given level,
// wrapping around once everything was attempted.
func (c *Catalog) PickNext(level int, used map[string]bool) (ClinicalCase, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.cases) == 0 {
		return ClinicalCase{}, false
	}
	for _, cc := range c.cases {
		if cc.Level <= level && !used[cc.ID] {
			return cc, true
		}
	}
	for _, cc := range c.cases {
		if cc.Level <= level {
			return cc, true
		}
	}
	return c.cases[0], true
}

var seed = []ClinicalCase{
	{
		ID:          "c1_anemia_ferropriva",
		Title:       "Fadiga progressiva em mulher jovem",
		Complaint:   "Cansaço e palidez há 3 meses.",
		History:     "Mulher, 28 anos, refere fadiga progressiva, queda de cabelo e vontade de mastigar gelo. Fluxo menstrual intenso.",
		Antecedents: "Sem comorbidades. Nega cirurgias.",
		PhysicalEx:  "Palidez cutâneo-mucosa, queilite angular.",
		VitalSigns:  map[string]string{"PA": "110x70", "FC": "96", "Tax": "36,5"},
		ReferenceDiagnosis: "Anemia ferropriva",
		Synonyms:           []string{"anemia por deficiência de ferro", "anemia hipocrômica microcítica"},
		RelevantExams: map[string]string{
			"hemograma": "Hb 8,9 g/dL, VCM 68 fL, HCM 21 pg (anemia microcítica hipocrômica)",
			"ferritina": "6 ng/mL (reduzida)",
		},
		OptionalExams: map[string]string{
			"perfil de ferro": "Ferro sérico baixo, TIBC elevada, saturação de transferrina 7%",
		},
		PlanKeywords:        []string{"sulfato ferroso", "ferro", "investigar sangramento", "dieta"},
		KnowledgeComponents: []string{"Hematologia", "Deficiências nutricionais"},
		Level:               1,
	},
	{
		ID:          "c2_dm2_descompensado",
		Title:       "Poliúria e perda de peso",
		Complaint:   "Muita sede e urinando demais há 6 semanas.",
		History:     "Homem, 52 anos, obeso, poliúria, polidipsia e perda de 6 kg. Pai diabético.",
		Antecedents: "Hipertensão em uso irregular de losartana.",
		PhysicalEx:  "IMC 33, acantose nigricans cervical.",
		VitalSigns:  map[string]string{"PA": "150x95", "FC": "88", "Tax": "36,8"},
		ReferenceDiagnosis: "Diabetes mellitus tipo 2",
		Synonyms:           []string{"diabetes tipo 2", "dm2", "diabetes mellitus"},
		RelevantExams: map[string]string{
			"glicemia de jejum":       "248 mg/dL",
			"hemoglobina glicada":     "11,2%",
		},
		OptionalExams: map[string]string{
			"creatinina":     "1,0 mg/dL",
			"urina tipo 1":   "Glicosúria, sem cetonúria",
		},
		PlanKeywords:        []string{"metformina", "dieta", "atividade física", "controle pressórico"},
		KnowledgeComponents: []string{"Endocrinologia", "Doenças metabólicas"},
		Level:               2,
	},
	{
		ID:          "c3_pneumonia_comunitaria",
		Title:       "Febre e tosse produtiva",
		Complaint:   "Febre alta e dor ao respirar há 4 dias.",
		History:     "Homem, 65 anos, tosse com expectoração amarelada, febre de 39°C e dor ventilatório-dependente à direita.",
		Antecedents: "Tabagista 40 anos-maço. DPOC leve.",
		PhysicalEx:  "Crepitações em base direita, macicez à percussão.",
		VitalSigns:  map[string]string{"PA": "120x80", "FC": "104", "FR": "26", "Tax": "38,9", "SatO2": "91%"},
		ReferenceDiagnosis: "Pneumonia adquirida na comunidade",
		Synonyms:           []string{"pneumonia comunitária", "pac", "pneumonia bacteriana"},
		RelevantExams: map[string]string{
			"raio-x de tórax": "Consolidação em lobo inferior direito com broncograma aéreo",
			"hemograma":       "Leucocitose 15.400 com desvio à esquerda",
		},
		OptionalExams: map[string]string{
			"pcr":        "180 mg/L",
			"hemocultura": "Pendente",
		},
		PlanKeywords:        []string{"antibiótico", "amoxicilina", "oxigênio", "reavaliação em 48h"},
		KnowledgeComponents: []string{"Pneumologia", "Infectologia"},
		Level:               3,
	},
}
