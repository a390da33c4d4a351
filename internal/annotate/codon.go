// Package annotate provides transcript-relative variant annotation.
package annotate

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// CodonTable maps DNA codons to single-letter amino acids ('*' for stop).
type CodonTable map[string]byte

// StandardCodonTable returns the standard genetic code.
func StandardCodonTable() CodonTable {
	return CodonTable{
		"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
		"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
		"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
		"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',

		"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
		"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
		"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
		"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',

		"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
		"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
		"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
		"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',

		"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
		"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
		"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
		"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
	}
}

// LoadCodonTable reads a codon usage table: one codon and its amino acid
// (single letter, '*' for stop) per line, whitespace separated. Codons not
// listed keep their standard translation.
func LoadCodonTable(r io.Reader) (CodonTable, error) {
	table := StandardCodonTable()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) < 2 || len(fields[0]) != 3 || len(fields[1]) != 1 {
			return nil, fmt.Errorf("codon table line %d: expected codon and amino acid", lineNum)
		}
		table[strings.ToUpper(fields[0])] = strings.ToUpper(fields[1])[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan codon table: %w", err)
	}
	return table, nil
}

// TranslateCodon translates a DNA codon to its amino acid.
// Returns 'X' for unknown codons and '*' for stop codons.
func (c CodonTable) TranslateCodon(codon string) byte {
	if aa, ok := c[codon]; ok {
		return aa
	}
	return 'X'
}

// Translate reads whole codons from seq and stops after the first stop
// codon, which is included as '*'. A trailing partial codon is ignored.
func (c CodonTable) Translate(seq string) string {
	var result strings.Builder
	result.Grow(len(seq) / 3)

	for i := 0; i+3 <= len(seq); i += 3 {
		aa := c.TranslateCodon(seq[i : i+3])
		result.WriteByte(aa)
		if aa == '*' {
			break
		}
	}
	return result.String()
}

// ReverseComplement returns the reverse complement of a DNA sequence.
func ReverseComplement(seq string) string {
	n := len(seq)
	// Stack-allocate for typical variant ref/alt lengths (≤64 bases).
	var buf [64]byte
	var result []byte
	if n <= len(buf) {
		result = buf[:n]
	} else {
		result = make([]byte, n)
	}
	for i := 0; i < n; i++ {
		result[i] = Complement(seq[n-1-i])
	}
	return string(result)
}

// Complement returns the complement of a single upper-case base.
func Complement(base byte) byte {
	switch base {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'G':
		return 'C'
	case 'C':
		return 'G'
	default:
		return 'N'
	}
}

// AminoAcidSingleToThree converts single letter amino acid to three letter code.
var AminoAcidSingleToThree = map[byte]string{
	'A': "Ala", 'C': "Cys", 'D': "Asp", 'E': "Glu",
	'F': "Phe", 'G': "Gly", 'H': "His", 'I': "Ile",
	'K': "Lys", 'L': "Leu", 'M': "Met", 'N': "Asn",
	'P': "Pro", 'Q': "Gln", 'R': "Arg", 'S': "Ser",
	'T': "Thr", 'V': "Val", 'W': "Trp", 'Y': "Tyr",
	'*': "*", 'X': "Xaa",
}

// threeLetter renders a residue string in three-letter code.
func threeLetter(aas string) string {
	var b strings.Builder
	for i := 0; i < len(aas); i++ {
		if s, ok := AminoAcidSingleToThree[aas[i]]; ok {
			b.WriteString(s)
		} else {
			b.WriteString("Xaa")
		}
	}
	return b.String()
}
