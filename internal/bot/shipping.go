package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/logging"
	"github.com/daaqui/joyas-bot/internal/utils"
)

// ErrInvalidShippingNotice is returned when phone or tracking code is missing.
var ErrInvalidShippingNotice = errors.New("bot: phone and tracking_code are required")

// ShippingNotice tells a customer their order left the warehouse.
type ShippingNotice struct {
	Phone        string `json:"phone"`
	CustomerName string `json:"customer_name"`
	TrackingCode string `json:"tracking_code"`
	Agency       string `json:"agency"`
}

// Validate checks required fields.
func (n *ShippingNotice) Validate() error {
	if strings.TrimSpace(n.Phone) == "" || strings.TrimSpace(n.TrackingCode) == "" {
		return ErrInvalidShippingNotice
	}
	return nil
}

// ShippingMessages builds the three messages of the shipping sequence.
func (p *Processor) ShippingMessages(ctx context.Context, n ShippingNotice) []string {
	greeting := "¡Hola!"
	if name := strings.TrimSpace(n.CustomerName); name != "" {
		greeting = fmt.Sprintf("¡Hola %s!", name)
	}
	agency := strings.TrimSpace(n.Agency)
	if agency == "" {
		agency = "Shalom"
	}

	balance := ""
	sales, err := p.store.GetPendingSalesByCustomer(ctx, utils.NormalizePhone(n.Phone))
	if err != nil {
		p.log.Warn("failed to load pending sales for shipping notice", zap.Error(err))
	}
	var owed float64
	for _, s := range sales {
		owed += s.Balance
	}
	if owed > 0 {
		balance = fmt.Sprintf(" de *S/ %.2f*", owed)
	}

	return []string{
		fmt.Sprintf("%s 🚚 Tu pedido de *%s* ya fue enviado por agencia *%s*. Este es tu código de seguimiento:", greeting, p.rules.BrandName, agency),
		strings.TrimSpace(n.TrackingCode),
		fmt.Sprintf("Cuando tu pedido llegue a la agencia, yapea el saldo restante%s al *%s* (%s) y envíanos la captura. 📲\n\n"+
			"Apenas lo confirmemos, te enviaremos la *clave secreta de recojo*. 🔑", balance, p.rules.YapeNumber, p.rules.YapeHolder),
	}
}

// SendShippingNotification sends the sequence in order and stops at the
// first failure. It returns how many messages went out.
func (p *Processor) SendShippingNotification(ctx context.Context, n ShippingNotice) (int, error) {
	if err := n.Validate(); err != nil {
		return 0, err
	}
	to := utils.NormalizePhone(n.Phone)

	unlock := p.locks.Lock(to)
	defer unlock()

	sent := 0
	for _, body := range p.ShippingMessages(ctx, n) {
		if err := p.messenger.SendText(ctx, to, body); err != nil {
			return sent, fmt.Errorf("bot: shipping notification to %s: %w", logging.MaskPhone(to), err)
		}
		sent++
	}
	p.log.Info("shipping notification sent", zap.String("to", logging.MaskPhone(to)), zap.Int("messages", sent))
	return sent, nil
}
