package checklist

import "voice-coach-go/internal/intent"

// MaxPoints is the published maximum of the default rubric.
const MaxPoints = 81

// Item ids of the default rubric.
const (
	ItemGreeting       = 1
	ItemDataCollection = 2
	ItemPrivacy        = 3
	ItemReadBack       = 4
	ItemListening      = 5
	ItemKnowledge      = 6
	ItemDamage         = 7
	ItemStore          = 8
	ItemCommunication  = 9
	ItemEmpathy        = 10
	ItemClosing        = 11
	ItemSurvey         = 12
)

// Default returns the 12 item, 81 point windshield-service rubric. Cues are
// written against textnorm output (lowercase, no accents, no punctuation).
func Default() *Checklist {
	c, err := New(MaxPoints, defaultItems())
	if err != nil {
		panic(err)
	}
	return c
}

func defaultItems() []Item {
	return []Item{
		{
			ID:     ItemGreeting,
			Weight: 10,
			Label:  "Answered with the correct greeting: salutation and brand name",
			Tip:    "Open the call with a salutation (good morning / bom dia) followed by the brand name.",
			Rule:   RuleConjunctive,
			Cues: []Cue{
				GroupCue(0, "salutation", `\b(good morning|good afternoon|good evening|bom dia|boa tarde|boa noite)\b`),
				GroupCue(1, "brand", `\b(acme glass|carglass)\b`),
			},
		},
		{
			ID:     ItemDataCollection,
			Weight: 6,
			Label:  "Requested complete data: name, tax id, two phones, plate and address",
			Tip:    "Collect name, tax id (CPF), phone, a second phone, plate and address before moving on.",
			Rule:   RuleDistinctFields,
			Fields: intent.RequiredFields(),
		},
		{
			ID:     ItemPrivacy,
			Weight: 2,
			Label:  "Stated the data protection (LGPD) script",
			Tip:    "Read the data protection (LGPD) script when you start collecting personal data.",
			Rule:   RuleProportional,
			Cues: []Cue{
				NewCue("lgpd", `\blgpd\b`),
				NewCue("data protection law", `\b(lei geral de protecao de dados|data protection law|general data protection)\b`),
				NewCue("data kept safe", `\b(seus dados (estao|serao|sao) protegidos|your data (is|are|will be) (protected|safe)|politica de privacidade|privacy policy)\b`),
			},
		},
		{
			ID:     ItemReadBack,
			Weight: 5,
			Label:  "Read back plate, phone and tax id to confirm them",
			Tip:    "Repeat the plate, the phone and the CPF back to the customer to confirm them.",
			Rule:   RuleProportional,
			Cues: []Cue{
				NewCue("confirmed tax id", `\b(confirmando|confirming|confirm|confere)\b[^\n]*\b(cpf|tax id)\b`),
				NewCue("confirmed plate", `\b(confirmando|confirming|confirm|confere)\b[^\n]*\b(placa|plate)\b`),
				NewCue("confirmed phone", `\b(confirmando|confirming|confirm|confere)\b[^\n]*\b(telefone|phone|celular|number)\b`),
			},
		},
		{
			ID:        ItemListening,
			Weight:    3,
			Label:     "Avoided duplicate requests and listened carefully",
			Tip:       "Listen to what the customer already told you: never ask for the same data twice, confirm it instead.",
			Rule:      RuleBaseline,
			DebitStep: 1,
		},
		{
			ID:     ItemKnowledge,
			Weight: 5,
			Label:  "Understood the request and showed knowledge of the services",
			Tip:    "Show you understand the service: talk about the windshield, the policy, the deductible and the repair.",
			Rule:   RuleProportional,
			Cues: []Cue{
				NewCue("windshield", `\b(para-brisa|parabrisa|windshield|windscreen)\b`),
				NewCue("insurance", `\b(seguro|apolice|insurance|insured|segurado)\b`),
				NewCue("deductible", `\b(franquia|deductible)\b`),
				NewCue("repair", `\b(reparo|troca|substituicao|repair|replacement|replace)\b`),
			},
		},
		{
			ID:     ItemDamage,
			Weight: 10,
			Label:  "Confirmed complete damage details (date, cause, record, paint, crack size, LED/xenon)",
			Tip:    "Ask when and how it happened, the claim record, paint damage, the crack size and LED/xenon headlights.",
			Rule:   RuleProportional,
			Cues: []Cue{
				NewCue("date", `\b(date|when did|quando|que dia|em que data)\b`),
				NewCue("cause", `\b(motivo|aconteceu|what happened|cause|how did it happen)\b`),
				NewCue("record", `\b(registro|sinistro|record|claim number)\b`),
				NewCue("paint", `\b(pintura|paint)\b`),
				NewCue("crack size", `\b(trinca|tamanho|crack|size)\b`),
				NewCue("led/xenon", `\b(led|xenon|sensor)\b`),
			},
		},
		{
			ID:     ItemStore,
			Weight: 10,
			Label:  "Confirmed the city and selected the first store offered by the system",
			Tip:    "Confirm the customer's city and schedule at the first store the system suggests.",
			Rule:   RuleProportional,
			Cues: []Cue{
				NewCue("city", `\b(cidade|city)\b`),
				NewCue("store", `\b(loja|store|shop)\b`),
				NewCue("first option", `\b(primeira opcao|first option|loja mais proxima|nearest store|agendar|schedule)\b`),
			},
		},
		{
			ID:     ItemCommunication,
			Weight: 5,
			Label:  "Communicated clearly and announced holds and returns",
			Tip:    "Announce when you put the customer on hold and thank them when you are back.",
			Rule:   RuleProportional,
			Cues: []Cue{
				NewCue("announced hold", `\b(vou verificar|um momento|let me check|i will check|one moment|just a moment)\b`),
				NewCue("thanked for waiting", `\b(obrigad[oa] por aguardar|thank you for waiting|thanks for waiting|thank you for holding)\b`),
				NewCue("announced return", `\b(voltei|retornei|i am back|i m back)\b`),
			},
		},
		{
			ID:     ItemEmpathy,
			Weight: 4,
			Label:  "Welcoming conduct: empathy and a smile in the voice",
			Tip:    "Show empathy: offer help, acknowledge the problem and reassure the customer.",
			Rule:   RuleProportional,
			Cues: []Cue{
				NewCue("offered help", `\b(posso te ajudar|posso ajudar|how can i help|how may i help)\b`),
				NewCue("here to help", `\b(estou aqui para ajudar|i am here to help|i m here to help)\b`),
				NewCue("acknowledged", `\b(entendo|sinto muito|i understand|sorry to hear)\b`),
				NewCue("reassured", `\b(acompanho voce|fique tranquilo|don t worry|i will guide you)\b`),
			},
		},
		{
			ID:     ItemClosing,
			Weight: 15,
			Label:  "Complete closing script (validity, deductible, tracking link, await contact)",
			Tip:    "Close with the proposal validity, the deductible, the tracking link, the protocol and when to expect contact.",
			Rule:   RuleProportional,
			Cues: []Cue{
				NewCue("validity", `\b(prazo de validade|validade da proposta|valid for|validity)\b`),
				NewCue("deductible", `\b(franquia|deductible)\b`),
				NewCue("tracking link", `\blink\b[^\n]*\b(acompanhamento|vistoria|tracking|inspection)\b`),
				NewCue("await contact", `\b(aguarde o contato|entraremos em contato|we will contact you|we ll contact you|wait for our call)\b`),
				NewCue("protocol", `\b(protocolo|protocol)\b`),
			},
		},
		{
			ID:     ItemSurvey,
			Weight: 6,
			Label:  "Explained the satisfaction survey",
			Tip:    "Tell the customer about the satisfaction survey and how to rate the service.",
			Rule:   RuleProportional,
			Cues: []Cue{
				NewCue("satisfaction survey", `\b(pesquisa de satisfacao|satisfaction survey)\b`),
				NewCue("rating", `\b(avaliar|avaliacao|rate|rating)\b`),
				NewCue("scale", `\b(de 0 a 10|de zero a dez|from 0 to 10|0 to 10|zero to ten)\b`),
			},
		},
	}
}
