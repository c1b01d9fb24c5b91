package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	kafkax "github.com/wrx861/tyres/internal/kafka"
	"github.com/wrx861/tyres/internal/orders"
)

// Render produces the recipient and message text for a lifecycle event.
// Unknown event types return ok=false and are skipped by the consumer.
func Render(env orders.Envelope) (recipient, text string, ok bool, err error) {
	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return "", "", false, err
		}
		text := fmt.Sprintf(
			"🔔 <b>Новый заказ!</b>\n\n"+
				"📦 Заказ: <b>#%s</b>\n"+
				"👤 Клиент: %s\n"+
				"📊 Товаров: %d шт.\n"+
				"💰 Сумма: <b>%s ₽</b>\n\n"+
				"⚡️ Требуется подтверждение в админ-панели",
			p.OrderID, p.UserName, p.ItemsCount, FormatAmount(p.TotalAmount))
		return p.RecipientID, text, true, nil

	case orders.EventOrderConfirmed:
		p, err := kafkax.UnwrapPayload[orders.OrderConfirmedPayload](env.Payload)
		if err != nil {
			return "", "", false, err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "✅ <b>Заказ подтвержден!</b>\n\n📦 Заказ: <b>#%s</b>\n\n", p.OrderID)
		if p.AdminComment != "" {
			fmt.Fprintf(&b, "💬 Комментарий: %s\n\n", p.AdminComment)
		}
		b.WriteString("Мы сообщим вам о дальнейших изменениях статуса.")
		return p.RecipientID, b.String(), true, nil

	case orders.EventOrderRejected:
		p, err := kafkax.UnwrapPayload[orders.OrderRejectedPayload](env.Payload)
		if err != nil {
			return "", "", false, err
		}
		text := fmt.Sprintf(
			"❌ <b>Заказ отклонен</b>\n\n"+
				"📦 Заказ: <b>#%s</b>\n"+
				"📝 Причина: %s\n\n"+
				"Свяжитесь с нами для уточнения деталей.",
			p.OrderID, p.Reason)
		return p.RecipientID, text, true, nil

	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return "", "", false, err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "📦 <b>Статус заказа изменен</b>\n\n"+
			"📦 Заказ: <b>#%s</b>\n"+
			"🔄 Новый статус: <b>%s</b>\n", p.OrderID, p.StatusLabel)
		if p.Comment != "" {
			fmt.Fprintf(&b, "💬 Комментарий: %s\n", p.Comment)
		}
		return p.RecipientID, b.String(), true, nil
	}
	return "", "", false, nil
}

// FormatAmount renders a ruble amount with two decimals and comma thousands
// separators, matching the storefront's other surfaces.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
