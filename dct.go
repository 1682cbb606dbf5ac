package mozjpeg

// Forward 8x8 DCT using the Loeffler-Ligtenberg-Moschytz algorithm (11
// multiplies per 1-D pass), matching mozjpeg's jfdctint.c. Ported from
// mozjpeg-oxide's dct.rs, which documents this as the integer slow DCT with
// 13-bit fixed-point multipliers and 2-bit pass-1 scaling.
//
// Reference: C. Loeffler, A. Ligtenberg and G. Moschytz, "Practical Fast
// 1-D DCT Algorithms with 11 Multiplications", ICASSP 1989, pp. 988-991.
const (
	dctConstBits = 13
	dctPass1Bits = 2

	fix0_298631336 = 2446
	fix0_390180644 = 3196
	fix0_541196100 = 4433
	fix0_765366865 = 6270
	fix0_899976223 = 7373
	fix1_175875602 = 9633
	fix1_501321110 = 12299
	fix1_847759065 = 15137
	fix1_961570560 = 16069
	fix2_053119869 = 16819
	fix2_562915447 = 20995
	fix3_072711026 = 25172
)

// descale is a rounded right shift: (x + 2^(n-1)) >> n.
func descale(x int32, n uint) int32 {
	return (x + (1 << (n - 1))) >> n
}

// levelShift centers 8-bit samples around zero: output = sample - 128.
func levelShift(samples *[blockSize]uint8, out *block) {
	for i := range samples {
		out[i] = int32(samples[i]) - 128
	}
}

// forwardDCT8x8 performs the two-pass (rows then columns) integer DCT on a
// level-shifted 8x8 block in natural order. The result is the true DCT
// coefficients scaled by a factor of 8; that factor is removed during
// quantization.
func forwardDCT8x8(samples *block, coeffs *block) {
	var data [blockSize]int32
	copy(data[:], samples[:])

	// Pass 1: rows.
	for row := 0; row < dctSize; row++ {
		base := row * dctSize

		tmp0 := data[base+0] + data[base+7]
		tmp7 := data[base+0] - data[base+7]
		tmp1 := data[base+1] + data[base+6]
		tmp6 := data[base+1] - data[base+6]
		tmp2 := data[base+2] + data[base+5]
		tmp5 := data[base+2] - data[base+5]
		tmp3 := data[base+3] + data[base+4]
		tmp4 := data[base+3] - data[base+4]

		tmp10 := tmp0 + tmp3
		tmp13 := tmp0 - tmp3
		tmp11 := tmp1 + tmp2
		tmp12 := tmp1 - tmp2

		data[base+0] = (tmp10 + tmp11) << dctPass1Bits
		data[base+4] = (tmp10 - tmp11) << dctPass1Bits

		z1 := (tmp12 + tmp13) * fix0_541196100
		data[base+2] = descale(z1+tmp13*fix0_765366865, dctConstBits-dctPass1Bits)
		data[base+6] = descale(z1+tmp12*(-fix1_847759065), dctConstBits-dctPass1Bits)

		oz1 := tmp4 + tmp7
		oz2 := tmp5 + tmp6
		oz3 := tmp4 + tmp6
		oz4 := tmp5 + tmp7
		oz5 := (oz3 + oz4) * fix1_175875602

		t4 := tmp4 * fix0_298631336
		t5 := tmp5 * fix2_053119869
		t6 := tmp6 * fix3_072711026
		t7 := tmp7 * fix1_501321110
		oz1 = oz1 * (-fix0_899976223)
		oz2 = oz2 * (-fix2_562915447)
		oz3 = oz3*(-fix1_961570560) + oz5
		oz4 = oz4*(-fix0_390180644) + oz5

		data[base+7] = descale(t4+oz1+oz3, dctConstBits-dctPass1Bits)
		data[base+5] = descale(t5+oz2+oz4, dctConstBits-dctPass1Bits)
		data[base+3] = descale(t6+oz2+oz3, dctConstBits-dctPass1Bits)
		data[base+1] = descale(t7+oz1+oz4, dctConstBits-dctPass1Bits)
	}

	// Pass 2: columns.
	for col := 0; col < dctSize; col++ {
		tmp0 := data[dctSize*0+col] + data[dctSize*7+col]
		tmp7 := data[dctSize*0+col] - data[dctSize*7+col]
		tmp1 := data[dctSize*1+col] + data[dctSize*6+col]
		tmp6 := data[dctSize*1+col] - data[dctSize*6+col]
		tmp2 := data[dctSize*2+col] + data[dctSize*5+col]
		tmp5 := data[dctSize*2+col] - data[dctSize*5+col]
		tmp3 := data[dctSize*3+col] + data[dctSize*4+col]
		tmp4 := data[dctSize*3+col] - data[dctSize*4+col]

		tmp10 := tmp0 + tmp3
		tmp13 := tmp0 - tmp3
		tmp11 := tmp1 + tmp2
		tmp12 := tmp1 - tmp2

		data[dctSize*0+col] = descale(tmp10+tmp11, dctPass1Bits)
		data[dctSize*4+col] = descale(tmp10-tmp11, dctPass1Bits)

		z1 := (tmp12 + tmp13) * fix0_541196100
		data[dctSize*2+col] = descale(z1+tmp13*fix0_765366865, dctConstBits+dctPass1Bits)
		data[dctSize*6+col] = descale(z1+tmp12*(-fix1_847759065), dctConstBits+dctPass1Bits)

		oz1 := tmp4 + tmp7
		oz2 := tmp5 + tmp6
		oz3 := tmp4 + tmp6
		oz4 := tmp5 + tmp7
		oz5 := (oz3 + oz4) * fix1_175875602

		t4 := tmp4 * fix0_298631336
		t5 := tmp5 * fix2_053119869
		t6 := tmp6 * fix3_072711026
		t7 := tmp7 * fix1_501321110
		oz1 = oz1 * (-fix0_899976223)
		oz2 = oz2 * (-fix2_562915447)
		oz3 = oz3*(-fix1_961570560) + oz5
		oz4 = oz4*(-fix0_390180644) + oz5

		data[dctSize*7+col] = descale(t4+oz1+oz3, dctConstBits+dctPass1Bits)
		data[dctSize*5+col] = descale(t5+oz2+oz4, dctConstBits+dctPass1Bits)
		data[dctSize*3+col] = descale(t6+oz2+oz3, dctConstBits+dctPass1Bits)
		data[dctSize*1+col] = descale(t7+oz1+oz4, dctConstBits+dctPass1Bits)
	}

	copy(coeffs[:], data[:])
}
