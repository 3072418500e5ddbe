package parsing

import (
	"regexp"
	"slices"
	"strings"
)

// Line filter tables.
var (
	blacklistPatterns = []string{
		`No\.|Trans|Date|Time|Tanggal|Waktu|Kasir|Table|Bill|Receipt|Welcome|Thank`,
		`Phone|Fax|Email|Website|WWW|Telp`,
		`MANDIRI|BCA|BNI|BRI|CIMB|DANAMON|PERMATA|MAYBANK`,
		`QRIS|GOPAY|OVO|DANA|LINKAJA|SHOPEEPAY`,
		`DEBIT|CREDIT|CARD|KARTU|EDC|FLASH|E-MONEY`,
		`TUNAI|PAID|LUNAS|BAYAR`,
		`\d{2}[-./]\d{2}[-./]\d{2,4}`,
		`[A-Z0-9]{12,}`,
	}

	// strictBlacklistPatterns extends the lookback blacklist with footer and
	// loyalty boilerplate that the window policy would otherwise pull in.
	strictBlacklistPatterns = append(slices.Clone(blacklistPatterns),
		`Terima\s*Kasih|Selamat|Alamat|Address|NPWP|Member|Poin|Points?\b`,
		`\b\d{1,2}:\d{2}(?::\d{2})?\b`,
	)

	blacklistRe       = regexp.MustCompile(`(?i)` + strings.Join(blacklistPatterns, "|"))
	strictBlacklistRe = regexp.MustCompile(`(?i)` + strings.Join(strictBlacklistPatterns, "|"))

	changeRe  = regexp.MustCompile(`(?i)CHANGE|KEMBALI|CASH`)
	moneyRe   = regexp.MustCompile(`(?i)(?:Rp\.?\s*|@\s*|x\s*)?(\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{0,2})?)`)
	keywordRe = regexp.MustCompile(`(?i)TOTAL|SUBTOTAL|TAX|PAJAK|PPN|HARGA|QTY|ITEM|DISKON|SC|SERVICE`)

	strictKeywordRe = regexp.MustCompile(`(?i)\b(?:SUB\s*TOTAL|GRAND\s*TOTAL|TOTAL|TAX|PAJAK|PPN|PB1|VAT|SERVICE|SC|DISKON|DISC|DISCOUNT|VOUCHER|POTONGAN|PROMO|QTY|ITEM|HARGA|TAGIHAN)\b`)
	strongMoneyRe   = regexp.MustCompile(`(?i)(?:\bRp\.?|@)\s*\d[\d.,]*|\d{1,3}(?:[.,]\d{3})+|\b\d{3,}\b`)
)

// Extractor tables.
var (
	itemRe      = regexp.MustCompile(`(?i)^(.*?)\s*((?:Rp\.?\s*)?[\d,.]+)$`)
	qtyRe       = regexp.MustCompile(`(?i)(?:^|\s)[x@]\s*(\d+)|(\d+)\s*[x@]`)
	separatorRe = regexp.MustCompile(`^[\-=_]{3,}$`)
	dashesRe    = regexp.MustCompile(`^[\-=_]+$`)
	metadataRe  = regexp.MustCompile(`(?i)^(OPERATOR|CASHIER|KASIR|SERVER|TABLE|TBL|POS|SHIFT|WAKTU|DATE|TIME|NO\.|ORDER|PICKUP|QUEUE|ANTRIAN)`)

	grandTotalRe    = regexp.MustCompile(`(?i)^(Grand\s*Total|Total\s*Bayar|Amount|Tagihan|Net|Total\s+[A-Z]+|Total\b)`)
	notGrandTotalRe = regexp.MustCompile(`(?i)(Sub|Disc|Hemat|Saving|Item)`)
	taxRe           = regexp.MustCompile(`(?i)(Tax|Pajak|PB1|PPN|VAT)`)
	serviceRe       = regexp.MustCompile(`(?i)(Service|SC[:\s]|Charge)`)

	forbiddenRe = regexp.MustCompile(`(?i)TOTAL|SUBTOTAL|BELANJA|JUAL|HEMAT|PAYMENT|NPWP|DPP|PURCHASE|VAT|HASE|CHANGE|KEMBALI|CASH|TUNAI|DEBIT|CREDIT|ITEM|ITEMS|QTY|MENU|EDC|MANUAL`)
	discountRe  = regexp.MustCompile(`(?i)DISKON|DISC|VOUCHER|POTONGAN|PROMO|HEMAT`)
)
