package intent

import (
	"regexp"
	"sort"
)

// Field is a discrete fact the customer can disclose.
type Field string

const (
	FieldName        Field = "name"
	FieldTaxID       Field = "tax_id"
	FieldPhone       Field = "phone"
	FieldSecondPhone Field = "second_phone"
	FieldPlate       Field = "plate"
	FieldAddress     Field = "address"
	FieldIncident    Field = "incident"
	FieldCityStore   Field = "city_store"
)

// RequiredFields lists the personal data categories an agent must collect.
func RequiredFields() []Field {
	return []Field{FieldName, FieldTaxID, FieldPhone, FieldSecondPhone, FieldPlate, FieldAddress}
}

// Label is the human readable name of the field.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "name"
	case FieldTaxID:
		return "tax id"
	case FieldPhone:
		return "phone"
	case FieldSecondPhone:
		return "second phone"
	case FieldPlate:
		return "plate"
	case FieldAddress:
		return "address"
	case FieldIncident:
		return "incident details"
	case FieldCityStore:
		return "city/store"
	default:
		return string(f)
	}
}

type fieldPattern struct {
	field Field
	re    *regexp.Regexp
}

// fieldLexicon is matched in order; each match is masked out before the next
// entry runs, so "second phone" is not also read as "phone".
var fieldLexicon = []fieldPattern{
	{FieldSecondPhone, regexp.MustCompile(`\b((outro|segundo) (telefone|numero|celular)|telefone (adicional|alternativo|secundario)|(second|another|other|alternative|additional|backup) (phone|telephone|number|contact)( number)?)\b`)},
	{FieldPhone, regexp.MustCompile(`\b(telefone|celular|telephone( number)?|phone( number)?|mobile|contact number|numero de contato)\b`)},
	{FieldName, regexp.MustCompile(`\b(seu nome|nome completo|nome do (segurado|cliente|titular)|your name|full name|name on the policy|name of the (policyholder|insured|customer))\b`)},
	{FieldTaxID, regexp.MustCompile(`\b(cpf|cnpj|tax id|taxpayer id|tax number)\b`)},
	{FieldPlate, regexp.MustCompile(`\b(placa|plate|license plate|licence plate)\b`)},
	{FieldAddress, regexp.MustCompile(`\b(endereco|address|cep|zip code|postal code)\b`)},
	{FieldIncident, regexp.MustCompile(`\b(o que aconteceu|o que houve|como aconteceu|quando aconteceu|tamanho da trinca|descreva|what happened|how did it happen|when did it happen|describe the damage|tell me about the damage|size of the crack|how big is the crack)\b`)},
	{FieldCityStore, regexp.MustCompile(`\b(qual cidade|sua cidade|em que cidade|qual loja|loja de preferencia|which city|what city|your city|which store|what store|preferred store|nearest store)\b`)},
}

var (
	salutationRe   = regexp.MustCompile(`\b(good morning|good afternoon|good evening|hello|hi|bom dia|boa tarde|boa noite|ola|oi)\b`)
	requestRe      = regexp.MustCompile(`\b(qual|quais|me (passa|passe|informa|informe|diga|fala)|pode (me )?(informar|passar|dizer)|informe|preciso d[eoa]s?|poderia|what|which|may i have|can i have|could you|can you|would you|please|tell me|give me|do you have|i need)\b`)
	confirmationRe = regexp.MustCompile(`\b(confirmando|confirmar|confirmo|confirma|confere|conferindo|repetindo|vou repetir|esta correto|ta correto|esta certo|isso mesmo|confirming|confirm|to confirm|double check|double-check|repeating|let me repeat|read it back|is (that|this|it) (correct|right))\b`)
)

// Closing topics, checked in order.
const (
	TopicLink       = "link"
	TopicDeductible = "deductible"
	TopicProtocol   = "protocol"
	TopicSurvey     = "survey"
	TopicFarewell   = "farewell"
)

var closingLexicon = []struct {
	topic string
	re    *regexp.Regexp
}{
	{TopicLink, regexp.MustCompile(`\b(link|vistoria|inspection|acompanhamento|tracking)\b`)},
	{TopicDeductible, regexp.MustCompile(`\b(franquia|deductible|validade|valid for|prazo)\b`)},
	{TopicProtocol, regexp.MustCompile(`\b(protocolo|protocol|aguarde (o )?contato|entraremos em contato|we will contact you|we ll contact you)\b`)},
	{TopicSurvey, regexp.MustCompile(`\b(pesquisa|survey)\b`)},
	{TopicFarewell, regexp.MustCompile(`\b(mais alguma coisa|algo mais|anything else|tenha um (bom|otimo) dia|have a (nice|good|great) (day|afternoon|evening)|obrigad[oa] por ligar|thank you for calling|thanks for calling)\b`)},
}

// DetectFields returns every field named in normalized text, ordered by the
// position of its first mention.
func DetectFields(normalized string) []Field {
	if normalized == "" {
		return nil
	}
	type hit struct {
		field Field
		pos   int
	}
	masked := normalized
	var hits []hit
	for _, p := range fieldLexicon {
		locs := p.re.FindAllStringIndex(masked, -1)
		if len(locs) == 0 {
			continue
		}
		hits = append(hits, hit{field: p.field, pos: locs[0][0]})
		masked = mask(masked, locs)
	}
	if len(hits) == 0 {
		return nil
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]Field, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.field)
	}
	return out
}

// HasRequest reports whether normalized text asks the customer for something.
func HasRequest(normalized string) bool {
	return requestRe.MatchString(normalized)
}

// HasSalutation reports whether normalized text opens like a greeting.
func HasSalutation(normalized string) bool {
	return salutationRe.MatchString(normalized)
}

// HasConfirmation reports whether normalized text carries an explicit
// read-back / confirmation cue.
func HasConfirmation(normalized string) bool {
	return confirmationRe.MatchString(normalized)
}

// ClosingTopic returns the first closing topic found, or "".
func ClosingTopic(normalized string) string {
	for _, c := range closingLexicon {
		if c.re.MatchString(normalized) {
			return c.topic
		}
	}
	return ""
}

func mask(s string, locs [][]int) string {
	b := []byte(s)
	for _, loc := range locs {
		for i := loc[0]; i < loc[1]; i++ {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
	}
	return string(b)
}
