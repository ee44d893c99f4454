package bot

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/logging"
	"github.com/daaqui/joyas-bot/internal/models"
	"github.com/daaqui/joyas-bot/internal/utils"
)

// MsgAdminUsage answers malformed admin commands.
const MsgAdminUsage = "⚠️ Formato incorrecto. Usa: *clave <número> <clave>*\nEj: clave 51987654321 ABC123"

// adminCommand is a parsed "clave <number> <secret>" message.
type adminCommand struct {
	customer string
	secret   string
	valid    bool
}

// parseAdminCommand reports whether text is a clave command at all; valid
// tells whether it was well formed.
func parseAdminCommand(text string) (adminCommand, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || utils.Fold(fields[0]) != "clave" {
		return adminCommand{}, false
	}
	if len(fields) < 3 {
		return adminCommand{}, true
	}
	number := utils.NormalizePhone(fields[1])
	if len(number) < 8 || strings.IndexFunc(number, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return adminCommand{}, true
	}
	return adminCommand{
		customer: number,
		secret:   strings.Join(fields[2:], " "),
		valid:    true,
	}, true
}

func pickupKeyMessage(secret, brand string) string {
	return fmt.Sprintf("🔑 ¡Tu pedido ya está listo para el recojo! Tu *clave secreta de recojo* es: *%s*\n\n"+
		"Preséntala junto con tu DNI en la agencia Shalom. ¡Gracias por comprar en %s! 💎", secret, brand)
}

func (p *Processor) runAdminCommand(ctx context.Context, cmd adminCommand) error {
	if !cmd.valid {
		p.send(ctx, p.adminNumber, MsgAdminUsage)
		return nil
	}

	log := p.log.With(zap.String("customer", logging.MaskPhone(cmd.customer)))

	if err := p.messenger.SendText(ctx, cmd.customer, pickupKeyMessage(cmd.secret, p.rules.BrandName)); err != nil {
		log.Error("failed to relay pickup key", zap.Error(err))
		p.send(ctx, p.adminNumber, fmt.Sprintf("❌ No se pudo enviar la clave a %s. Inténtalo de nuevo.", cmd.customer))
		return nil
	}

	sales, err := p.store.GetPendingSalesByCustomer(ctx, cmd.customer)
	if err != nil {
		log.Error("failed to load pending sales", zap.Error(err))
	}
	updated := 0
	for _, sale := range sales {
		if err := p.store.UpdateSaleStatus(ctx, sale.ID, models.SaleStatusKeySent); err != nil {
			log.Error("failed to update sale status", zap.String("sale_id", sale.ID), zap.Error(err))
			continue
		}
		updated++
	}

	log.Info("pickup key relayed", zap.Int("sales_updated", updated))
	p.send(ctx, p.adminNumber, fmt.Sprintf("✅ Clave enviada a %s. Pedidos actualizados: %d", cmd.customer, updated))
	return nil
}
