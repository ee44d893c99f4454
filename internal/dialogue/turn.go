package dialogue

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/logging"
	"github.com/daaqui/joyas-bot/internal/models"
	"github.com/daaqui/joyas-bot/internal/orders"
)

// turn is one message applied to one session.
type turn struct {
	engine  *Engine
	session *models.Session
	product *models.Product
	text    string
	intent  Intent
}

func (t *turn) run(ctx context.Context) error {
	switch t.session.State {
	case StateOccasionResponse:
		return t.occasionResponse(ctx)
	case StatePurchaseDecision:
		return t.purchaseDecision(ctx)
	case StateUpsellDecision:
		return t.upsellDecision(ctx)
	case StateLocation:
		return t.location(ctx)
	case StateLimaDistrict:
		return t.limaDistrict(ctx)
	case StateProvinceDistrict:
		return t.provinceDistrict(ctx)
	case StateShalomAgreement:
		return t.yesNo(ctx, MsgAskShalomExperience, MsgShalomDeclined)
	case StateShalomExperience:
		return t.shalomExperience(ctx)
	case StateShalomAgencyKnowledge:
		return t.yesNo(ctx, MsgAskAgencyDetails, MsgNoAgencyKnown)
	case StateDeliveryDetails, StateShalomDetails:
		return t.details(ctx)
	case StateFinalConfirmation:
		return t.finalConfirmation(ctx)
	case StateLimaPaymentAgreement:
		return t.yesNo(ctx, limaPaymentMessage(t.session.Advance, t.engine.rules), MsgLimaPaymentDenied)
	case StateLimaPayment, StateShalomPayment:
		return t.payment(ctx)
	default:
		t.reply(ctx, MsgConfused)
		return nil
	}
}

// advance fires event and moves the session to the resulting state.
func (t *turn) advance(ctx context.Context, event string) error {
	dst, err := next(ctx, t.session.State, event)
	if err != nil {
		return err
	}
	t.session.State = dst
	return nil
}

// moveAndSave advances, persists and then sends the replies.
func (t *turn) moveAndSave(ctx context.Context, event string, replies ...string) error {
	if err := t.advance(ctx, event); err != nil {
		return err
	}
	if err := t.engine.save(ctx, t.session); err != nil {
		return err
	}
	for i, r := range replies {
		if i > 0 {
			t.engine.pause(ctx)
		}
		t.reply(ctx, r)
	}
	return nil
}

// close ends the conversation without a sale.
func (t *turn) close(ctx context.Context, event, reply string) error {
	if err := t.advance(ctx, event); err != nil {
		return err
	}
	if err := t.engine.delete(ctx, t.session.PhoneNumber); err != nil {
		return err
	}
	t.reply(ctx, reply)
	return nil
}

func (t *turn) reply(ctx context.Context, body string) {
	t.engine.send(ctx, t.session.PhoneNumber, body)
}

// yesNo covers states whose "no" ends the conversation.
func (t *turn) yesNo(ctx context.Context, onYes, onNo string) error {
	if t.intent == Affirm {
		return t.moveAndSave(ctx, EventAccept, onYes)
	}
	return t.close(ctx, EventDecline, onNo)
}

func (t *turn) occasionResponse(ctx context.Context) error {
	if err := t.advance(ctx, EventDescribe); err != nil {
		return err
	}
	if err := t.engine.save(ctx, t.session); err != nil {
		return err
	}

	if img := t.product.ImagePackaging; img != "" {
		t.engine.sendImage(ctx, t.session.PhoneNumber, img)
		t.engine.pause(ctx)
	}
	t.reply(ctx, detailsMessage(t.product))
	t.engine.pause(ctx)
	t.reply(ctx, trustMessage(t.engine.rules))
	return nil
}

func (t *turn) purchaseDecision(ctx context.Context) error {
	if t.intent != Affirm {
		return t.close(ctx, EventDecline, MsgPurchaseDeclined)
	}
	if !t.product.HasUpsell() {
		return t.moveAndSave(ctx, EventAccept, MsgAskLocation)
	}

	if err := t.advance(ctx, EventAcceptWithUpsell); err != nil {
		return err
	}
	if err := t.engine.save(ctx, t.session); err != nil {
		return err
	}
	if img := t.product.ImageUpsell; img != "" {
		t.engine.sendImage(ctx, t.session.PhoneNumber, img)
		t.engine.pause(ctx)
	}
	t.reply(ctx, upsellMessage(t.product))
	t.engine.pause(ctx)
	t.reply(ctx, MsgUpsellOptions)
	return nil
}

func (t *turn) upsellDecision(ctx context.Context) error {
	if t.intent == Offer && t.product.HasUpsell() {
		name := t.product.UpsellName
		if name == "" {
			name = defaultUpsellName
		}
		t.session.ProductName = name
		t.session.ProductPrice = t.product.UpsellPrice
		t.session.IsUpsell = true
		return t.moveAndSave(ctx, EventTakeOffer, MsgOfferTaken, MsgAskLocation)
	}
	t.session.IsUpsell = false
	return t.moveAndSave(ctx, EventKeepSingle, MsgSingleKept, MsgAskLocation)
}

func (t *turn) location(ctx context.Context) error {
	switch t.intent {
	case Lima:
		t.session.Province = "Lima"
		return t.moveAndSave(ctx, EventChooseLima, MsgAskLimaDistrict)
	case Province:
		return t.moveAndSave(ctx, EventChooseProvince, MsgAskProvinceDistrict)
	default:
		t.reply(ctx, MsgLocationUnclear)
		return nil
	}
}

func (t *turn) limaDistrict(ctx context.Context) error {
	district, coverage := t.engine.districts.Resolve(t.text)
	switch coverage {
	case DistrictCovered:
		t.session.District = district
		t.session.ShippingType = models.ShippingLimaDelivery
		t.session.PaymentMethod = models.PaymentCashOnDelivery
		return t.moveAndSave(ctx, EventDistrictCovered, deliveryDetailsMessage(district))
	case DistrictUncovered:
		t.session.District = district
		t.session.ShippingType = models.ShippingLimaShalom
		t.session.PaymentMethod = models.PaymentAdvanceBalance
		return t.moveAndSave(ctx, EventDistrictUncovered, shalomAgreementMessage(district, t.engine.rules.AdvanceShalom))
	default:
		t.reply(ctx, MsgDistrictUnknown)
		return nil
	}
}

func (t *turn) provinceDistrict(ctx context.Context) error {
	province, district := ParseProvinceDistrict(t.text)
	if province == "" {
		t.reply(ctx, MsgAskProvinceDistrict)
		return nil
	}
	t.session.Province = province
	t.session.District = district
	t.session.ShippingType = models.ShippingProvinceShalom
	t.session.PaymentMethod = models.PaymentAdvanceBalance
	return t.moveAndSave(ctx, EventProvinceGiven, shalomAgreementMessage(district, t.engine.rules.AdvanceShalom))
}

func (t *turn) shalomExperience(ctx context.Context) error {
	if t.intent == Affirm {
		return t.moveAndSave(ctx, EventAccept, MsgAskShalomDetails)
	}
	return t.moveAndSave(ctx, EventDecline, MsgExplainShalom)
}

func (t *turn) details(ctx context.Context) error {
	details := strings.TrimSpace(t.text)
	if details == "" {
		if question, ok := LastQuestion(t.session.State); ok {
			t.reply(ctx, question)
		}
		return nil
	}
	t.session.ClientDetails = details
	return t.moveAndSave(ctx, EventDetailsGiven, summaryMessage(t.session))
}

func (t *turn) finalConfirmation(ctx context.Context) error {
	rules := t.engine.rules
	if t.intent != Affirm {
		if t.session.IsLimaDelivery() {
			return t.moveAndSave(ctx, EventCorrectDelivery, MsgCorrection)
		}
		return t.moveAndSave(ctx, EventCorrectShalom, MsgCorrection)
	}

	if t.session.IsLimaDelivery() {
		t.session.Advance = rules.AdvanceLimaDelivery
		return t.moveAndSave(ctx, EventConfirmDelivery, limaAdvanceRequestMessage(t.session.Advance))
	}
	t.session.Advance = rules.AdvanceShalom
	return t.moveAndSave(ctx, EventConfirmShalom, shalomPaymentMessage(t.session.Advance, rules))
}

func (t *turn) payment(ctx context.Context) error {
	if t.intent != Receipt {
		t.reply(ctx, MsgAwaitingReceipt)
		return nil
	}

	log := t.engine.log.With(zap.String("customer", logging.MaskPhone(t.session.PhoneNumber)))

	sale, err := t.engine.finalizer.Finalize(ctx, t.session)
	switch {
	case errors.Is(err, orders.ErrAlreadyFinalized):
		// the customer still gets the closing for the stored order
		log.Warn("order already recorded; closing session", zap.String("order_key", t.session.OrderKey))
	case err != nil:
		log.Error("failed to finalize order", zap.Error(err))
		t.reply(ctx, MsgOrderError)
		return nil
	default:
		if err := t.advance(ctx, EventReceipt); err != nil {
			return err
		}
	}

	t.reply(ctx, t.closingMessage(sale))
	return t.engine.delete(ctx, t.session.PhoneNumber)
}

func (t *turn) closingMessage(sale *models.Sale) string {
	if sale.ShippingType == models.ShippingLimaDelivery {
		day := DeliveryDay(t.engine.now(), t.engine.rules)
		return limaClosingMessage(day, t.engine.rules.LimaDeliveryHours, sale.Balance)
	}
	return shalomClosingMessage(sale)
}
