package ai

// EventHints returns personalization hints for event-driven messages
// based on the lead's sentiment status.
func EventHints(sentiment string) []string {
	switch sentiment {
	case "achou caro":
		return []string{
			"Enfatizar valor e benefícios",
			"Mencionar opções de pagamento ou financiamento",
			"Destacar diferenciais que justificam o investimento",
		}
	case "interessado":
		return []string{
			"Tom mais direto e focado em conversão",
			"Oferecer próximos passos concretos",
			"Criar senso de urgência leve",
		}
	case "quer desconto":
		return []string{
			"Focar em valor agregado em vez de redução de preço",
			"Sugerir benefícios exclusivos ou adicionais",
			"Destacar condições especiais limitadas",
		}
	default:
		return nil
	}
}

// InactivityHints returns personalization hints for re-engagement
// messages. Unknown sentiments get generic soft-touch hints.
func InactivityHints(sentiment string) []string {
	switch sentiment {
	case "interessado":
		return []string{
			"Lembrar de pontos específicos do interesse",
			"Oferecer informações novas ou recentes",
			"Criar urgência leve sem pressionar",
		}
	case "achou caro":
		return []string{
			"Focar em valor e benefícios a longo prazo",
			"Mencionar opções de pagamento ou financiamento",
			"Compartilhar casos de sucesso ou depoimentos",
		}
	case "compra futura":
		return []string{
			"Oferecer informações para planejamento",
			"Sugerir passos preliminares",
			"Manter engajamento sem pressionar por decisão imediata",
		}
	default:
		return []string{
			"Reestabelecer contato de forma leve",
			"Oferecer ajuda ou tirar dúvidas",
			"Compartilhar informação de valor",
		}
	}
}
