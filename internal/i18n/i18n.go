// Package i18n holds the display strings for the entry and report views.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

var (
	PortugueseBR = language.BrazilianPortuguese
	EnglishUS    = language.AmericanEnglish
	Default      = PortugueseBR
)

var matcher = language.NewMatcher([]language.Tag{PortugueseBR, EnglishUS})

var translations = map[language.Tag]map[string]string{
	PortugueseBR: {
		"header_sup":          "Hall dos Heróis",
		"add_btn":             "+ ADICIONAR REINO",
		"calculate_btn":       "CALCULAR RANKING DO KVK 👑",
		"kingdom_placeholder": "Nome ou Número do Reino",
		"upload_text":         "Clique para enviar o print",
		"processing":          "Processando...",
		"champion_subtitle":   "CONQUISTA ABSOLUTA",
		"champion_title":      "🏆 KVK CHAMPION 🏆",
		"total_war_score":     "⚔️ Pontuação Total de Guerra",
		"ranking_title":       "Classificação Geral",
		"return_btn":          "RETORNAR AO HALL",
		"error_ocr":           "Erro ao ler a imagem. Tente novamente.",
		"error_api":           "Chave API não configurada.",
		"error_empty_ranking": "Adicione reinos e faça o upload dos prints!",
		"error_last_kingdom":  "É necessário pelo menos um reino!",
		"error_network":       "Falha de rede ao contatar o serviço de leitura.",
		"reading_done":        "Leitura concluída com sucesso!",
		"api_saved":           "API Salva!",
		"empty_kingdom":       "Reino Sem Nome",
		"kingdom_label":       "Reino",
		"kvk_report_title":    "KVK REPORT",
		"official_report":     "RELATÓRIO OFICIAL",
		"champion_kingdom":    "Reino Campeão",
		"global_summary":      "⚔️ Resumo Global",
		"total_score":         "Pontuação Total",
		"total_t5":            "Total T5",
		"total_t4":            "Total T4",
		"rules":               "Regras",
		"points":              "pts",
		"infantry":            "Infantaria",
		"cavalry":             "Cavalaria",
		"archer":              "Arqueiros",
		"siege":               "Cerco",
		"footer_proof":        "Este documento comprova a pontuação do KvK.",
		"footer_title":        "Calculadora Hall dos Heróis",
		"footer_rights":       "© Todos os direitos reservados — Anonymous K32",
		"footer_version":      "Versão 2.0",
		"date_layout":         "02/01/2006",
	},
	EnglishUS: {
		"header_sup":          "Hall of Heroes",
		"add_btn":             "+ ADD KINGDOM",
		"calculate_btn":       "CALCULATE KVK RANKING 👑",
		"kingdom_placeholder": "Kingdom Name or Number",
		"upload_text":         "Click to upload screenshot",
		"processing":          "Processing...",
		"champion_subtitle":   "ABSOLUTE CONQUEST",
		"champion_title":      "🏆 KVK CHAMPION 🏆",
		"total_war_score":     "⚔️ Total War Score",
		"ranking_title":       "Overall Ranking",
		"return_btn":          "RETURN TO HALL",
		"error_ocr":           "Error reading image. Please try again.",
		"error_api":           "API Key not configured.",
		"error_empty_ranking": "Add kingdoms and upload their screenshots!",
		"error_last_kingdom":  "At least one kingdom is required!",
		"error_network":       "Network failure while contacting the reading service.",
		"reading_done":        "Reading completed successfully!",
		"api_saved":           "API Saved!",
		"empty_kingdom":       "Unnamed Kingdom",
		"kingdom_label":       "Kingdom",
		"kvk_report_title":    "KVK REPORT",
		"official_report":     "OFFICIAL REPORT",
		"champion_kingdom":    "Champion Kingdom",
		"global_summary":      "⚔️ Global Summary",
		"total_score":         "Total Score",
		"total_t5":            "T5 Total",
		"total_t4":            "T4 Total",
		"rules":               "Rules",
		"points":              "pts",
		"infantry":            "Infantry",
		"cavalry":             "Cavalry",
		"archer":              "Archers",
		"siege":               "Siege",
		"footer_proof":        "This document certifies the KvK score.",
		"footer_title":        "Hall of Heroes Calculator",
		"footer_rights":       "© All rights reserved — Anonymous K32",
		"footer_version":      "Version 2.0",
		"date_layout":         "01/02/2006",
	},
}

// Match picks the supported language closest to a BCP 47 tag or an
// Accept-Language value. Anything unrecognized falls back to pt-BR.
func Match(value string) language.Tag {
	if value == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return []language.Tag{PortugueseBR, EnglishUS}[idx]
}

// T returns the translation of key, or the key itself when there is none.
func T(lang language.Tag, key string) string {
	if dict, ok := translations[lang]; ok {
		if v, ok := dict[key]; ok {
			return v
		}
	}
	return key
}

// KingdomLabel is the default name given to an unnamed kingdom.
func KingdomLabel(lang language.Tag) func(int) string {
	prefix := T(lang, "kingdom_label")
	return func(position int) string {
		return fmt.Sprintf("%s %d", prefix, position)
	}
}
