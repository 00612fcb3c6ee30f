package question

import "sync"

// Catalog is the in-memory question bank, seeded at process start and
// extended by professor imports. Content covers the structure and chemistry
// of nucleic acids; prompts and expected answers are kept in the course
// language (Brazilian Portuguese).
type Catalog struct {
	mu        sync.RWMutex
	questions []Question
	byID      map[string]Question
}

// NewCatalog builds a catalog from the given questions, preserving order.
func NewCatalog(questions []Question) *Catalog {
	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return &Catalog{questions: questions, byID: byID}
}

// Default returns the built-in molecular biology catalog.
func Default() *Catalog {
	return NewCatalog(seed)
}

// Get returns a question by ID.
func (c *Catalog) Get(id string) (Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.byID[id]
	return q, ok
}

// All returns every question in catalog order.
func (c *Catalog) All() []Question {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// Add appends a question, skipping IDs already present. Reports whether
// the question was added.
func (c *Catalog) Add(q Question) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[q.ID]; ok {
		return false
	}
	c.questions = append(c.questions, q)
	c.byID[q.ID] = q
	return true
}

// PickNext returns the first unlocked question not yet attempted. When the
// student has exhausted every unlocked question the used set wraps around.
func (c *Catalog) PickNext(level int, used map[string]bool) (Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.questions) == 0 {
		return Question{}, false
	}
	for _, q := range c.questions {
		if q.AvailableAt(level) && !used[q.ID] {
			return q, true
		}
	}
	// Everything unlocked was attempted; restart the cycle.
	for _, q := range c.questions {
		if q.AvailableAt(level) {
			return q, true
		}
	}
	return c.questions[0], true
}

var seed = []Question{
	{
		ID:                  "q1_nucleotideo",
		Prompt:              "Qual a estrutura do nucleotídeo?",
		KnowledgeComponents: []string{"Química dos nucleotídeos"},
		ExpectedAnswer:      "O nucleotídeo é composto por uma base nitrogenada, uma pentose e um ou mais grupos fosfato.",
		CriticalError:       "Nucleotídeo é uma base do DNA",
		MaxPoints:           1,
		Difficulty:          DifficultyBasic,
	},
	{
		ID:                  "q2_ribose_vs_desoxi",
		Prompt:              "Compare ribose e desoxirribose destacando a diferença no carbono 2' e por que isso distingue RNA de DNA.",
		KnowledgeComponents: []string{"Química dos nucleotídeos"},
		ExpectedAnswer:      "Ribose possui OH no carbono 2', enquanto a desoxirribose tem H; essa ausência do 2'-OH caracteriza o DNA e ajuda a distingui-lo do RNA.",
		MaxPoints:           1,
		Difficulty:          DifficultyBasic,
	},
	{
		ID:                  "q3_nucleosideo_vs_nucleotideo",
		Prompt:              "Defina nucleosídeo e nucleotídeo e explique por que apenas um deles forma polímeros.",
		KnowledgeComponents: []string{"Química dos nucleotídeos"},
		ExpectedAnswer:      "Nucleosídeo é formado por base e pentose; nucleotídeo inclui fosfato, que viabiliza ligações fosfodiéster e a formação do polímero.",
		MaxPoints:           1,
		Difficulty:          DifficultyBasic,
	},
	{
		ID:                  "q4_atp_damp_ump",
		Prompt:              "Explique o que significam ATP, dAMP e UMP (açúcar, base e número de fosfatos).",
		KnowledgeComponents: []string{"Nomenclatura de nucleotídeos"},
		ExpectedAnswer:      "ATP é adenosina trifosfato, dAMP é desoxiadenosina monofosfato, UMP é uridina monofosfato.",
		MaxPoints:           1,
		Difficulty:          DifficultyBasic,
	},
	{
		ID:                  "q5_purinas_pirimidinas",
		Prompt:              "Resuma as diferenças estruturais entre bases púricas e pirimídicas e relacione com o pareamento na dupla hélice.",
		KnowledgeComponents: []string{"Estrutura das bases nitrogenadas e pareamento"},
		ExpectedAnswer:      "Purinas (A,G) têm dois anéis; pirimidinas (C,T) um anel; pareamento purina-pirimidina ajuda a manter diâmetro constante da hélice.",
		CriticalError:       "A e G são pirimidinas; T e C são purinas",
		MaxPoints:           1,
		Difficulty:          DifficultyBasic,
	},
	{
		ID:                  "q6_dna_definicao",
		Prompt:              "O que é DNA? Responda incluindo do que ele é feito e que tipo de informação ele armazena.",
		KnowledgeComponents: []string{"Estrutura química do DNA", "Organização da dupla hélice"},
		ExpectedAnswer:      "DNA é um polímero de desoxirribonucleotídeos; a ordem das bases (A, T, C, G) codifica informação hereditária e instruções para produzir RNAs e proteínas.",
		CriticalError:       "DNA é uma proteína ou é feito de aminoácidos",
		MaxPoints:           2,
		Difficulty:          DifficultyIntermediate,
	},
	{
		ID:                  "q7_5_3_line",
		Prompt:              "O que representam as denominações 5' e 3' de uma cadeia polinucleotídica?",
		KnowledgeComponents: []string{"Organização da dupla hélice"},
		ExpectedAnswer:      "Uma extremidade termina em 5'-fosfato e a outra em 3'-hidroxila; sequências são sintetizadas com referência a 5'→3'.",
		MaxPoints:           2,
		Difficulty:          DifficultyIntermediate,
	},
	{
		ID:                  "q8_ligacao_fosfodiester",
		Prompt:              "O que é a ligação fosfodiéster e qual é a consequência dela para a estrutura da fita de DNA?",
		KnowledgeComponents: []string{"Interações do DNA"},
		ExpectedAnswer:      "Ligação covalente 3'–5' entre nucleotídeos, formando o esqueleto açúcar-fosfato contínuo e conferindo estabilidade e polaridade à fita.",
		CriticalError:       "Ligação fraca ou ligação de hidrogênio entre bases",
		MaxPoints:           2,
		Difficulty:          DifficultyIntermediate,
	},
	{
		ID:                  "q9_complementaridade",
		Prompt:              "Explique o que é complementaridade de bases e dê um exemplo.",
		KnowledgeComponents: []string{"Interações do DNA"},
		ExpectedAnswer:      "Cada base pareia preferencialmente com sua complementar (A com T; G com C) ou uma purina sempre com uma pirimidina.",
		CriticalError:       "A pareia com C ou G pareia com T",
		MaxPoints:           2,
		Difficulty:          DifficultyIntermediate,
	},
	{
		ID:                  "q10_antiparalelismo",
		Prompt:              "O que significa dizer que as fitas do DNA são antiparalelas?",
		KnowledgeComponents: []string{"Organização da dupla hélice"},
		ExpectedAnswer:      "A extremidade 3' de uma fita está pareada à extremidade 5' da fita complementar; enquanto uma fita vai 5'→3', a outra está no sentido contrário.",
		MaxPoints:           2,
		Difficulty:          DifficultyIntermediate,
	},
	{
		ID:                  "q11_interacoes_fitas",
		Prompt:              "Quais interações mantêm as duas fitas unidas na dupla hélice? Diferencie o que une na mesma fita vs entre fitas.",
		KnowledgeComponents: []string{"Interações do DNA"},
		ExpectedAnswer:      "Na mesma fita: fosfodiéster (covalente). Entre fitas: ligações de hidrogênio e empilhamento de bases que estabilizam a hélice.",
		CriticalError:       "As fitas são unidas por ligações peptídicas",
		MaxPoints:           2,
		Difficulty:          DifficultyIntermediate,
	},
	{
		ID:                  "q12_dna_armazenamento",
		Prompt:              "Explique por que o DNA é adequado para armazenar informação por longos períodos.",
		KnowledgeComponents: []string{"Estrutura química do DNA", "Organização da dupla hélice"},
		ExpectedAnswer:      "O backbone covalente é estável, a informação está na sequência, a dupla hélice protege as bases e a complementaridade permite cópia fiel e reparo.",
		CriticalError:       "Porque o DNA tem desoxirribose, sendo menos reativo",
		MaxPoints:           3,
		Difficulty:          DifficultyAdvanced,
	},
	{
		ID:                  "q13_complementaridade_func",
		Prompt:              "Por que a complementaridade de bases permite que o DNA funcione como molde na replicação e transcrição?",
		KnowledgeComponents: []string{"Organização da dupla hélice", "Estrutura química do DNA"},
		ExpectedAnswer:      "Uma fita contém a informação para gerar a outra por regras de pareamento; enzimas usam a fita molde para adicionar nucleotídeos complementares.",
		MaxPoints:           3,
		Difficulty:          DifficultyAdvanced,
	},
	{
		ID:                  "q14_hidrogenio_vs_empilhamento",
		Prompt:              "Compare o papel das ligações de hidrogênio com o empilhamento de bases na estabilidade do DNA.",
		KnowledgeComponents: []string{"Organização da dupla hélice"},
		ExpectedAnswer:      "Ligações de hidrogênio definem o pareamento e contribuem para coesão; o empilhamento hidrofóbico/van der Waals contribui fortemente para estabilidade global.",
		CriticalError:       "Apenas as ligações de hidrogênio são importantes",
		MaxPoints:           3,
		Difficulty:          DifficultyAdvanced,
	},
	{
		ID:                  "q15_desnaturacao",
		Prompt:              "O que acontece com a dupla hélice durante a desnaturação?",
		KnowledgeComponents: []string{"Organização da dupla hélice", "Interações do DNA"},
		ExpectedAnswer:      "Rompem-se interações entre fitas (ligações de hidrogênio e empilhamento), mas o backbone fosfodiéster geralmente permanece intacto.",
		CriticalError:       "Desnaturação rompe ligação fosfodiéster",
		MaxPoints:           3,
		Difficulty:          DifficultyAdvanced,
	},
}
