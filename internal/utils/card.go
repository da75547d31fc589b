package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/apperrors"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// ValidateInstrument checks the card data submitted with a payment. The first
// failing field is reported; no charge is attempted on invalid input.
func ValidateInstrument(instr *models.PaymentInstrument) error {
	number := strings.ReplaceAll(instr.CardNumber, " ", "")
	if !cardNumberPattern.MatchString(number) {
		return apperrors.NewValidation("card_number", "must be exactly 16 digits")
	}
	if !luhnValid(number) {
		return apperrors.NewValidation("card_number", "failed checksum verification")
	}
	m := expiryPattern.FindStringSubmatch(instr.ExpiryDate)
	if m == nil {
		return apperrors.NewValidation("expiry_date", "must use MM/YY format")
	}
	month, _ := strconv.Atoi(m[1])
	if month < 1 || month > 12 {
		return apperrors.NewValidation("expiry_date", "month must be between 01 and 12")
	}
	if !cvvPattern.MatchString(instr.CVV) {
		return apperrors.NewValidation("cvv", "must be 3 or 4 digits")
	}
	if strings.TrimSpace(instr.HolderName) == "" {
		return apperrors.NewValidation("holder_name", "must not be empty")
	}
	if strings.TrimSpace(instr.Address) == "" {
		return apperrors.NewValidation("address", "must not be empty")
	}
	return nil
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// MaskCardNumber keeps only the last four digits for audit records
func MaskCardNumber(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	if len(number) < 4 {
		return strings.Repeat("*", len(number))
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}

// GenerateHMAC produces an integrity tag over the instrument fields
func GenerateHMAC(cardNumber, expiryDate, cvv string, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(cardNumber + expiryDate + cvv))
	return hex.EncodeToString(h.Sum(nil))
}

// Encrypt encrypts a string using AES-CBC with PKCS#7 padding. The result is
// hex-encoded with the IV prepended.
func Encrypt(data string, key []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("input data is empty")
	}
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return "", fmt.Errorf("encryption key must be 16, 24, or 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	dataBytes := []byte(data)
	padding := aes.BlockSize - len(dataBytes)%aes.BlockSize
	for i := 0; i < padding; i++ {
		dataBytes = append(dataBytes, byte(padding))
	}

	ciphertext := make([]byte, len(dataBytes))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, dataBytes)

	return hex.EncodeToString(append(iv, ciphertext...)), nil
}

// Decrypt reverses Encrypt
func Decrypt(encryptedData string, key []byte) (string, error) {
	if len(encryptedData) == 0 {
		return "", fmt.Errorf("encrypted data is empty")
	}
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return "", fmt.Errorf("decryption key must be 16, 24, or 32 bytes, got %d", len(key))
	}

	data, err := hex.DecodeString(encryptedData)
	if err != nil {
		return "", fmt.Errorf("failed to decode hex: %w", err)
	}
	if len(data) < aes.BlockSize {
		return "", fmt.Errorf("encrypted data too short: %d bytes", len(data))
	}

	iv := data[:aes.BlockSize]
	ciphertext := data[aes.BlockSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("invalid ciphertext length: %d bytes", len(ciphertext))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	padding := int(plaintext[len(plaintext)-1])
	if padding > aes.BlockSize || padding == 0 || padding > len(plaintext) {
		return "", fmt.Errorf("invalid padding value: %d", padding)
	}
	for i := len(plaintext) - padding; i < len(plaintext); i++ {
		if int(plaintext[i]) != padding {
			return "", fmt.Errorf("invalid padding bytes at position %d", i)
		}
	}

	return string(plaintext[:len(plaintext)-padding]), nil
}
