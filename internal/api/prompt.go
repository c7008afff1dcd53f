package api

const systemPrompt = `Read the provided image.

The image contains exactly 8 numbers arranged in 3 rows:
- Row 1: 3 numbers
- Row 2: 3 numbers
- Row 3: 2 numbers

Mandatory rules:
1. Read ONLY integers.
2. Ignore any text, icons or pictures.
3. Read left to right, row by row.
4. Do not invent numbers.
5. If a number cannot be identified, return ERROR.

Mandatory output format (pure JSON):
{
  "values": [
    n1, n2, n3,
    n4, n5, n6,
    n7, n8
  ]
}
Do not ask for specialty or tier, numbers only. Do not include markdown (no ` + "```json" + `).`
