package dialogue

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// Conversation states.
const (
	StateOccasionResponse      = "awaiting_occasion_response"
	StatePurchaseDecision      = "awaiting_purchase_decision"
	StateUpsellDecision        = "awaiting_upsell_decision"
	StateLocation              = "awaiting_location"
	StateLimaDistrict          = "awaiting_lima_district"
	StateProvinceDistrict      = "awaiting_province_district"
	StateDeliveryDetails       = "awaiting_delivery_details"
	StateShalomAgreement       = "awaiting_shalom_agreement"
	StateShalomExperience      = "awaiting_shalom_experience"
	StateShalomAgencyKnowledge = "awaiting_shalom_agency_knowledge"
	StateShalomDetails         = "awaiting_shalom_details"
	StateFinalConfirmation     = "awaiting_final_confirmation"
	StateLimaPaymentAgreement  = "awaiting_lima_payment_agreement"
	StateLimaPayment           = "awaiting_lima_payment"
	StateShalomPayment         = "awaiting_shalom_payment"

	// Pseudo states; sessions never persist in them.
	StateClosed    = "closed"
	StateCompleted = "completed"
)

// Events fired by the state handlers.
const (
	EventDescribe          = "describe"
	EventAcceptWithUpsell  = "accept_with_upsell"
	EventAccept            = "accept"
	EventDecline           = "decline"
	EventTakeOffer         = "take_offer"
	EventKeepSingle        = "keep_single"
	EventChooseLima        = "choose_lima"
	EventChooseProvince    = "choose_province"
	EventDistrictCovered   = "district_covered"
	EventDistrictUncovered = "district_uncovered"
	EventProvinceGiven     = "province_given"
	EventDetailsGiven      = "details_given"
	EventConfirmDelivery   = "confirm_delivery"
	EventConfirmShalom     = "confirm_shalom"
	EventCorrectDelivery   = "correct_delivery"
	EventCorrectShalom     = "correct_shalom"
	EventReceipt           = "receipt"
	EventCancel            = "cancel"
)

// activeStates lists every state a stored session may be in.
var activeStates = []string{
	StateOccasionResponse,
	StatePurchaseDecision,
	StateUpsellDecision,
	StateLocation,
	StateLimaDistrict,
	StateProvinceDistrict,
	StateDeliveryDetails,
	StateShalomAgreement,
	StateShalomExperience,
	StateShalomAgencyKnowledge,
	StateShalomDetails,
	StateFinalConfirmation,
	StateLimaPaymentAgreement,
	StateLimaPayment,
	StateShalomPayment,
}

var transitions = fsm.Events{
	{Name: EventDescribe, Src: []string{StateOccasionResponse}, Dst: StatePurchaseDecision},

	{Name: EventAcceptWithUpsell, Src: []string{StatePurchaseDecision}, Dst: StateUpsellDecision},
	{Name: EventAccept, Src: []string{StatePurchaseDecision}, Dst: StateLocation},
	{Name: EventDecline, Src: []string{StatePurchaseDecision}, Dst: StateClosed},

	{Name: EventTakeOffer, Src: []string{StateUpsellDecision}, Dst: StateLocation},
	{Name: EventKeepSingle, Src: []string{StateUpsellDecision}, Dst: StateLocation},

	{Name: EventChooseLima, Src: []string{StateLocation}, Dst: StateLimaDistrict},
	{Name: EventChooseProvince, Src: []string{StateLocation}, Dst: StateProvinceDistrict},

	{Name: EventDistrictCovered, Src: []string{StateLimaDistrict}, Dst: StateDeliveryDetails},
	{Name: EventDistrictUncovered, Src: []string{StateLimaDistrict}, Dst: StateShalomAgreement},
	{Name: EventProvinceGiven, Src: []string{StateProvinceDistrict}, Dst: StateShalomAgreement},

	{Name: EventAccept, Src: []string{StateShalomAgreement}, Dst: StateShalomExperience},
	{Name: EventDecline, Src: []string{StateShalomAgreement}, Dst: StateClosed},

	{Name: EventAccept, Src: []string{StateShalomExperience}, Dst: StateShalomDetails},
	{Name: EventDecline, Src: []string{StateShalomExperience}, Dst: StateShalomAgencyKnowledge},

	{Name: EventAccept, Src: []string{StateShalomAgencyKnowledge}, Dst: StateShalomDetails},
	{Name: EventDecline, Src: []string{StateShalomAgencyKnowledge}, Dst: StateClosed},

	{Name: EventDetailsGiven, Src: []string{StateDeliveryDetails, StateShalomDetails}, Dst: StateFinalConfirmation},

	{Name: EventConfirmDelivery, Src: []string{StateFinalConfirmation}, Dst: StateLimaPaymentAgreement},
	{Name: EventConfirmShalom, Src: []string{StateFinalConfirmation}, Dst: StateShalomPayment},
	{Name: EventCorrectDelivery, Src: []string{StateFinalConfirmation}, Dst: StateDeliveryDetails},
	{Name: EventCorrectShalom, Src: []string{StateFinalConfirmation}, Dst: StateShalomDetails},

	{Name: EventAccept, Src: []string{StateLimaPaymentAgreement}, Dst: StateLimaPayment},
	{Name: EventDecline, Src: []string{StateLimaPaymentAgreement}, Dst: StateClosed},

	{Name: EventReceipt, Src: []string{StateLimaPayment, StateShalomPayment}, Dst: StateCompleted},

	{Name: EventCancel, Src: activeStates, Dst: StateClosed},
}

// next returns the state reached from current by event, or an error when
// the table has no such transition.
func next(ctx context.Context, current, event string) (string, error) {
	machine := fsm.NewFSM(current, transitions, fsm.Callbacks{})
	if err := machine.Event(ctx, event); err != nil {
		return current, fmt.Errorf("dialogue: %s from %s: %w", event, current, err)
	}
	return machine.Current(), nil
}

// IsActiveState reports whether state belongs to a live conversation.
func IsActiveState(state string) bool {
	for _, s := range activeStates {
		if s == state {
			return true
		}
	}
	return false
}

// expectations maps each state to what its question asks for.
var expectations = map[string]Expectation{
	StateOccasionResponse:      ExpectFreeText,
	StatePurchaseDecision:      ExpectYesNo,
	StateUpsellDecision:        ExpectUpsell,
	StateLocation:              ExpectLocation,
	StateLimaDistrict:          ExpectFreeText,
	StateProvinceDistrict:      ExpectFreeText,
	StateDeliveryDetails:       ExpectFreeText,
	StateShalomAgreement:       ExpectYesNo,
	StateShalomExperience:      ExpectYesNo,
	StateShalomAgencyKnowledge: ExpectYesNo,
	StateShalomDetails:         ExpectFreeText,
	StateFinalConfirmation:     ExpectYesNo,
	StateLimaPaymentAgreement:  ExpectYesNo,
	StateLimaPayment:           ExpectReceipt,
	StateShalomPayment:         ExpectReceipt,
}

// capturesFreeText reports states whose answer is an address or ID block;
// FAQ and product keywords are not intercepted there.
func capturesFreeText(state string) bool {
	return state == StateDeliveryDetails || state == StateShalomDetails
}

// allowsProductRestart reports whether a product keyword restarts the flow.
func allowsProductRestart(state string) bool {
	return state != StateOccasionResponse && state != StatePurchaseDecision && !capturesFreeText(state)
}
