package dialogue

import (
	"fmt"
	"time"

	"github.com/daaqui/joyas-bot/internal/config"
	"github.com/daaqui/joyas-bot/internal/models"
)

// Fixed replies.
const (
	MsgCancelled           = "Hecho. He cancelado el proceso actual. Si necesitas algo más, no dudes en escribirme. 😊"
	MsgUnsupportedType     = "Por ahora solo puedo procesar mensajes de texto e imágenes de comprobantes. 😊"
	MsgProductUnavailable  = "Lo siento, este producto ya no está disponible. Por favor, empieza de nuevo."
	MsgPurchaseDeclined    = "Entendido. Si cambias de opinión, aquí estaré. ¡Que tengas un buen día! 😊"
	MsgOfferTaken          = "¡Genial! Has elegido la oferta. ✨"
	MsgSingleKept          = "¡Perfecto! Continuamos con tu collar individual. ✨"
	MsgAskLocation         = "Para empezar a coordinar el envío, por favor, dime: ¿eres de *Lima* o de *provincia*?"
	MsgAskLimaDistrict     = "¡Genial! ✨ Para saber qué tipo de envío te corresponde, por favor, dime: ¿en qué distrito te encuentras? 📍"
	MsgAskProvinceDistrict = "¡Entendido! Para continuar, indícame tu *provincia y distrito*. ✍🏽\n\n📝 *Ej: Arequipa, Arequipa*"
	MsgLocationUnclear     = "No te entendí bien. Por favor, dime si tu envío es para *Lima* o para *provincia*."
	MsgDistrictUnknown     = "No pude reconocer ese distrito. Por favor, intenta escribirlo de nuevo."
	MsgShalomDeclined      = "Comprendo. Si cambias de opinión, aquí estaré. ¡Gracias! 😊"
	MsgAskShalomExperience = "¡Genial! Para hacer el proceso más fácil, cuéntame: ¿alguna vez has recogido un pedido en una agencia Shalom? 🙋🏽‍♀️ (Sí/No)"
	MsgAskShalomDetails    = "¡Excelente! Entonces ya conoces el proceso. ✅\n\n" +
		"Para terminar, bríndame en un solo mensaje tu *Nombre Completo, DNI* y la *dirección exacta de la agencia Shalom* donde recogerás. ✍🏽"
	MsgExplainShalom = "¡No te preocupes! Te explico: Shalom es una empresa de envíos. Te damos un código de seguimiento, y cuando tu pedido llega a la agencia, nos yapeas el saldo restante. Apenas confirmemos, te damos la clave secreta para el recojo. ¡Es 100% seguro! 🔒\n\n" +
		"¿Conoces la dirección de alguna agencia Shalom cerca a ti? (Sí/No)"
	MsgAskAgencyDetails  = "¡Perfecto! Por favor, bríndame en un solo mensaje tu *Nombre Completo, DNI* y la *dirección de esa agencia Shalom*. ✍🏽"
	MsgNoAgencyKnown     = "Entiendo. 😔 Te recomiendo buscar en Google 'Shalom agencias' para encontrar la más cercana. ¡Gracias por tu interés!"
	MsgCorrection        = "¡Claro, lo corregimos! 😊 Por favor, envíame nuevamente la información de envío completa en un solo mensaje."
	MsgLimaPaymentDenied = "Entendido. Si cambias de opinión, aquí estaré. ¡Gracias!"
	MsgOrderError        = "¡Uy! Hubo un problema al registrar tu pedido. Un asesor se pondrá en contacto contigo."
	MsgAwaitingReceipt   = "Estoy esperando la *captura de pantalla* de tu pago. 😊"
	MsgConfused          = "Estoy un poco confundido. Si deseas reiniciar, escribe 'cancelar'."
	MsgUpsellOptions     = "Para continuar, por favor, respóndeme:\n" +
		"👉🏽 Escribe *oferta* para ampliar tu pedido.\n" +
		"👉🏽 Escribe *continuar* para llevar solo un collar."
	msgFAQContinue = "¡Espero haber aclarado tu duda! 😊 Continuando...\n\n"
)

const defaultUpsellName = "Oferta 2x Collares Mágicos + Cadenas"

// lastQuestions is re-asked after an FAQ answer or an unexpected image.
var lastQuestions = map[string]string{
	StateOccasionResponse:      "Cuéntame, ¿es un tesoro para ti o un regalo para alguien especial?",
	StatePurchaseDecision:      "¿Te gustaría coordinar tu pedido ahora para asegurar el tuyo? (Sí/No)",
	StateUpsellDecision:        "Para continuar, por favor, respóndeme con una de estas dos palabras:\n👉🏽 Escribe *oferta* para ampliar tu pedido.\n👉🏽 Escribe *continuar* para llevar solo un collar.",
	StateLocation:              MsgAskLocation,
	StateLimaDistrict:          MsgAskLimaDistrict,
	StateProvinceDistrict:      "¡Entendido! Para continuar, por favor, indícame tu *provincia y distrito*. ✍🏽\n\n📝 *Ej: Arequipa, Arequipa*",
	StateDeliveryDetails:       "Envíame en *un solo mensaje* tu *Nombre Completo, Dirección exacta* y una *Referencia*.",
	StateShalomAgreement:       "¿Estás de acuerdo con el adelanto? (Sí/No)",
	StateShalomExperience:      "¿Alguna vez has recogido un pedido en una agencia Shalom? (Sí/No)",
	StateShalomAgencyKnowledge: "¿Conoces la dirección de alguna agencia Shalom cerca a ti? (Sí/No)",
	StateShalomDetails:         "Bríndame en un solo mensaje tu *Nombre Completo, DNI* y la *dirección de la agencia Shalom*.",
	StateFinalConfirmation:     "¿Confirmas que todo es correcto? (Sí/No)",
	StateLimaPaymentAgreement:  "¿Procedemos con la confirmación del adelanto? (Sí/No)",
	StateLimaPayment:           "Una vez realizado, por favor, envíame la *captura de pantalla* para validar tu pedido.",
	StateShalomPayment:         "Una vez realizado, por favor, envíame la *captura de pantalla* para validar tu pedido.",
}

// LastQuestion returns the question pending in state, if any.
func LastQuestion(state string) (string, bool) {
	q, ok := lastQuestions[state]
	return q, ok
}

func welcomeMessage(userName string, rules *config.BusinessRules) string {
	return fmt.Sprintf("¡Hola %s! 👋🏽✨ Bienvenida a *%s*. Si deseas información sobre nuestro *Collar Mágico Girasol Radiant*, solo pregunta por él. 😊",
		userName, rules.BrandName)
}

func pitchMessage(userName string, p *models.Product) string {
	name := p.Name
	if name == "" {
		name = "nuestro producto"
	}
	desc := p.ShortDescription
	if desc == "" {
		desc = "es simplemente increíble."
	}
	return fmt.Sprintf("¡Hola %s! 🌞 El *%s* %s\n\n"+
		"Por campaña, llévatelo a *S/ %.2f* (¡incluye envío gratis a todo el Perú! 🚚).\n\n"+
		"Cuéntame, ¿es un tesoro para ti o un regalo para alguien especial?",
		userName, name, desc, p.BasePrice)
}

func detailsMessage(p *models.Product) string {
	material := p.Material
	if material == "" {
		material = "material de alta calidad"
	}
	packaging := p.Packaging
	if packaging == "" {
		packaging = "viene en una hermosa caja de regalo"
	}
	return fmt.Sprintf("¡Maravillosa elección! ✨ El *%s* es pura energía. Aquí tienes todos los detalles:\n\n"+
		"💎 *Material:* %s ¡Hipoalergénico y no se oscurece!\n"+
		"🔮 *La Magia:* Su piedra central es termocromática, cambia de color con tu temperatura.\n"+
		"🎁 *Presentación:* %s",
		p.Name, material, packaging)
}

func trustMessage(rules *config.BusinessRules) string {
	return fmt.Sprintf("Para tu total seguridad, somos %s, un negocio formal con *RUC %s*. ¡Tu compra es 100%% segura! 🇵🇪\n\n"+
		"¿Te gustaría coordinar tu pedido ahora para asegurar el tuyo? (Sí/No)",
		rules.BrandName, rules.RUC)
}

func upsellMessage(p *models.Product) string {
	return fmt.Sprintf("¡Excelente elección! Pero espera... por decidir llevar tu collar, ¡acabas de desbloquear una oferta exclusiva! ✨\n\n"+
		"Añade un segundo Collar Mágico y te incluimos de regalo dos cadenas de diseño italiano.\n\n"+
		"Tu pedido se ampliaría a:\n"+
		"✨ 2 Collares Mágicos\n🎁 2 Cadenas de Regalo\n🎀 2 Cajitas Premium\n"+
		"💎 Todo por un único pago de S/ %.2f", p.UpsellPrice)
}

func shalomAgreementMessage(destination string, advance float64) string {
	return fmt.Sprintf("Entendido. ✅ Para *%s*, los envíos son por agencia *Shalom* y requieren un adelanto de *S/ %.2f* como compromiso de recojo. 🤝\n\n"+
		"¿Estás de acuerdo? (Sí/No)", destination, advance)
}

func deliveryDetailsMessage(district string) string {
	return fmt.Sprintf("¡Excelente! Tenemos cobertura en *%s*. 🏙️\n\n"+
		"Para registrar tu pedido, envíame en *un solo mensaje* tu *Nombre Completo, Dirección exacta* y una *Referencia*.\n\n"+
		"📝 *Ej: Ana Pérez, Jr. Gamarra 123, Depto 501, La Victoria. Al lado de la farmacia.*", district)
}

func summaryMessage(s *models.Session) string {
	return fmt.Sprintf("¡Gracias! Revisa que todo esté correcto:\n\n"+
		"*Resumen del Pedido*\n"+
		"💎 %s\n"+
		"💵 Total: S/ %.2f\n"+
		"🚚 Envío: %s - ¡Gratis!\n"+
		"💳 Pago: %s\n\n"+
		"*Datos de Entrega*\n"+
		"%s\n\n"+
		"¿Confirmas que todo es correcto? (Sí/No)",
		s.ProductName, s.ProductPrice, s.ShippingDestination(), s.PaymentMethod, s.ClientDetails)
}

func limaAdvanceRequestMessage(advance float64) string {
	return fmt.Sprintf("¡Perfecto! ✅ Como último paso, solicitamos un adelanto de *S/ %.2f* para confirmar el compromiso de recojo. 🤝 Este monto se descuenta del total, por supuesto.\n\n"+
		"¿Procedemos? (Sí/No)", advance)
}

func shalomPaymentMessage(advance float64, rules *config.BusinessRules) string {
	return fmt.Sprintf("¡Genial! Puedes realizar el adelanto de *S/ %.2f* a nuestra cuenta:\n\n"+
		"💳 *YAPE / PLIN:* %s\n"+
		"👤 *Titular:* %s\n"+
		"🔒 Tu compra es 100%% segura (*RUC %s*).\n\n"+
		"Una vez realizado, envíame la *captura de pantalla* para validar tu pedido.",
		advance, rules.YapeNumber, rules.YapeHolder, rules.RUC)
}

func limaPaymentMessage(advance float64, rules *config.BusinessRules) string {
	return fmt.Sprintf("¡Genial! Puedes realizar el adelanto de *S/ %.2f* a:\n\n"+
		"💳 *YAPE / PLIN:* %s\n"+
		"👤 *Titular:* %s\n\n"+
		"Una vez realizado, envíame la *captura de pantalla* para validar.",
		advance, rules.YapeNumber, rules.YapeHolder)
}

// limaLocation is the store's clock. Peru keeps UTC-5 all year, so the fixed
// zone covers hosts without tzdata.
var limaLocation = func() *time.Location {
	if loc, err := time.LoadLocation("America/Lima"); err == nil {
		return loc
	}
	return time.FixedZone("PET", -5*60*60)
}()

// DeliveryDay is "mañana" on weekdays and "el Lunes" on weekends, by Lima time.
func DeliveryDay(now time.Time, rules *config.BusinessRules) string {
	switch now.In(limaLocation).Weekday() {
	case time.Saturday, time.Sunday:
		return rules.WeekendDeliveryMessage
	default:
		return rules.WeekdayDeliveryMessage
	}
}

func limaClosingMessage(day, hours string, balance float64) string {
	return fmt.Sprintf("¡Adelanto confirmado! ✨ Tu pedido ha sido agendado. Lo recibirás *%s* entre *%s*.\n\n"+
		"💵 Pagarás al recibir: *S/ %.2f*.\n\n"+
		"¡Gracias por tu compra! 🎉", day, hours, balance)
}

func shalomClosingMessage(sale *models.Sale) string {
	days := "3-5"
	if sale.ShippingType == models.ShippingLimaShalom {
		days = "1-2"
	}
	return fmt.Sprintf("¡Adelanto confirmado! ✨ Agendamos tu envío. Te enviaremos tu código de seguimiento por aquí en las próximas 24h hábiles. "+
		"El tiempo de entrega en agencia es de %s días hábiles.\n\n"+
		"Total: S/ %.2f\n"+
		"Adelanto: S/ %.2f\n"+
		"💵 Saldo pendiente: *S/ %.2f*, a pagar al recoger en agencia.", days, sale.Price, sale.AdvanceReceived, sale.Balance)
}
