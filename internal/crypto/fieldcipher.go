package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// KeySize - размер ключа для AES-256 (32 bytes)
	KeySize = 32
	// IVSize - размер IV для GCM (16 bytes, как в исходном формате envelope)
	IVSize = 16
	// TagSize - размер authentication tag GCM (16 bytes)
	TagSize = 16
	// EnvelopeDelimiter разделяет части envelope: iv:tag:ciphertext
	EnvelopeDelimiter = ":"
	// envelopeParts - количество hex-частей в валидном envelope
	envelopeParts = 3
)

// fallbackKey используется, когда ключ не задан в конфигурации
// Подходит ТОЛЬКО для разработки: в production ключ обязан приходить из конфига
const fallbackKey = "super_secret_key_for_aes_256_gcm"

// FieldCipher шифрует и расшифровывает отдельные текстовые поля (описания задач)
// Формат envelope: hex(iv):hex(tag):hex(ciphertext)
//
// По умолчанию работает в режиме fail-open: любая криптографическая ошибка
// при расшифровке возвращает входную строку как есть (доступность важнее
// строгой целостности, поведение зафиксировано тестами). Режим failClosed
// переводит расшифровку в строгий режим и возвращает ошибку.
type FieldCipher struct {
	key        []byte
	failClosed bool
}

// DeriveKey приводит ключевой материал к ровно 32 байтам
// Ключ ровно в 32 байта используется как есть; более короткий дополняется
// символами '0', более длинный обрезается; пустой заменяется fallback ключом
// Инвариант: результат всегда ровно KeySize байт
func DeriveKey(configured string) []byte {
	if configured == "" {
		return []byte(fallbackKey)
	}
	if len(configured) == KeySize {
		return []byte(configured)
	}
	padded := configured + strings.Repeat("0", KeySize)
	return []byte(padded[:KeySize])
}

// NewFieldCipher создает cipher с ключом, выведенным из конфигурации
func NewFieldCipher(configuredKey string, failClosed bool) *FieldCipher {
	return &FieldCipher{
		key:        DeriveKey(configuredKey),
		failClosed: failClosed,
	}
}

// UsingFallbackKey сообщает, работает ли cipher на dev-ключе по умолчанию
// Используется сервером для warning при старте
func UsingFallbackKey(configuredKey string) bool {
	return configuredKey == ""
}

// Encrypt шифрует текст и возвращает envelope iv:tag:ciphertext (hex)
// Пустой вход проходит насквозь: Encrypt("") == ""
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	// Генерируем случайный IV: envelope никогда не переиспользует IV
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	// GCM добавляет authentication tag в конец ciphertext
	sealed := aesGCM.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	return hex.EncodeToString(iv) +
		EnvelopeDelimiter + hex.EncodeToString(tag) +
		EnvelopeDelimiter + hex.EncodeToString(ciphertext), nil
}

// Decrypt расшифровывает envelope обратно в текст
// Строка не из трех hex-частей возвращается без изменений: так переживаются
// незашифрованные legacy-данные. Ошибка расшифровки (подделанный tag, битый
// hex) в режиме fail-open тоже возвращает вход как есть; в режиме failClosed
// возвращается ошибка
func (c *FieldCipher) Decrypt(envelope string) (string, error) {
	if envelope == "" {
		return "", nil
	}

	parts := strings.Split(envelope, EnvelopeDelimiter)
	if len(parts) != envelopeParts {
		// Не envelope: считаем значение уже расшифрованным
		return envelope, nil
	}

	plaintext, err := c.open(parts[0], parts[1], parts[2])
	if err != nil {
		if c.failClosed {
			return "", fmt.Errorf("failed to decrypt field: %w", err)
		}
		return envelope, nil
	}

	return plaintext, nil
}

// open выполняет собственно расшифровку трех hex-частей
func (c *FieldCipher) open(ivHex, tagHex, ciphertextHex string) (string, error) {
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode iv: %w", err)
	}
	if len(iv) != IVSize {
		return "", fmt.Errorf("iv must be %d bytes, got %d", IVSize, len(iv))
	}

	tag, err := hex.DecodeString(tagHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode tag: %w", err)
	}

	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	// Open проверяет authentication tag и возвращает ошибку при несовпадении
	plaintext, err := aesGCM.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("authentication failed or corrupted data: %w", err)
	}

	return string(plaintext), nil
}
