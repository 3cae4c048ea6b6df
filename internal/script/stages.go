package script

import (
	"vapourbox/internal/models"
)

// stageFields returns the substitution table for every stage. Each stage
// lists its gate first, then its method selection, then its tunables. A
// disabled stage is cut by its gate; its tunables still resolve so templates
// without gates never keep stray markers.
func stageFields(p models.Pipeline) []field {
	var fields []field
	fields = append(fields, cropFields(p.CropResize)...)
	fields = append(fields, deinterlaceFields(p.Deinterlace)...)
	fields = append(fields, noiseReductionFields(p.NoiseReduction)...)
	fields = append(fields, dehaloFields(p.Dehalo)...)
	fields = append(fields, deblockFields(p.Deblock)...)
	fields = append(fields, debandFields(p.Deband)...)
	fields = append(fields, sharpenFields(p.Sharpen)...)
	fields = append(fields, chromaFields(p.ChromaFixes)...)
	fields = append(fields, colorFields(p.ColorCorrection)...)
	fields = append(fields, resizeFields(p.CropResize)...)
	return fields
}

// selectFields keeps chosen and removes the other alternatives.
func selectFields(chosen string, alternatives ...string) []field {
	out := make([]field, 0, len(alternatives))
	for _, alt := range alternatives {
		out = append(out, gate(alt, alt == chosen))
	}
	return out
}

func cropFields(c models.CropResize) []field {
	return []field{
		gate("CROP", c.CropActive()),
		intAlways("CROP_LEFT", c.CropLeft),
		intAlways("CROP_RIGHT", c.CropRight),
		intAlways("CROP_TOP", c.CropTop),
		intAlways("CROP_BOTTOM", c.CropBottom),
	}
}

// deinterlaceFields maps QTGMC tunables. Defaults mirror havsfunc so an
// untouched value is left for QTGMC to choose.
func deinterlaceFields(q models.QTGMC) []field {
	return []field{
		gate("DEINTERLACE", q.Enabled),
		stringAlways("PRESET", string(q.Preset)),
		boolOptional("TFF", q.TFF),
		intUnlessDefault("INPUT_TYPE", q.InputType, 0),
		intUnlessDefault("FPS_DIVISOR", q.FPSDivisor, 1),

		intOptional("TR0", q.TR0),
		intOptional("TR1", q.TR1),
		intOptional("TR2", q.TR2),
		intOptional("REP0", q.Rep0),
		intUnlessDefault("REP1", q.Rep1, 0),
		intOptional("REP2", q.Rep2),
		boolUnlessDefault("REP_CHROMA", q.RepChroma, true),

		stringOptional("EDI_MODE", q.EdiMode),
		intOptional("NN_SIZE", q.NNSize),
		intOptional("NN_NEURONS", q.NNeurons),
		intUnlessDefault("EDI_QUAL", q.EdiQual, 1),
		intOptional("EDI_MAX_D", q.EdiMaxD),
		stringUnlessDefault("CHROMA_EDI", q.ChromaEdi, ""),

		intOptional("BLOCK_SIZE", q.BlockSize),
		intOptional("OVERLAP", q.Overlap),
		intOptional("SEARCH", q.Search),
		intOptional("SEARCH_PARAM", q.SearchParam),
		intOptional("PEL_SEARCH", q.PelSearch),
		boolOptional("CHROMA_MOTION", q.ChromaMotion),
		boolUnlessDefault("TRUE_MOTION", q.TrueMotion, false),
		intOptional("LAMBDA", q.Lambda),
		intOptional("LSAD", q.LSAD),
		intOptional("P_NEW", q.PNew),
		intOptional("P_LEVEL", q.PLevel),
		boolUnlessDefault("GLOBAL_MOTION", q.GlobalMotion, true),
		intUnlessDefault("DCT", q.DCT, 0),
		intOptional("SUB_PEL", q.SubPel),
		intUnlessDefault("SUB_PEL_INTERP", q.SubPelInterp, 2),

		intUnlessDefault("TH_SAD1", q.ThSAD1, 640),
		intUnlessDefault("TH_SAD2", q.ThSAD2, 256),
		intUnlessDefault("TH_SCD1", q.ThSCD1, 180),
		intUnlessDefault("TH_SCD2", q.ThSCD2, 98),

		floatOptional("SHARPNESS", q.Sharpness),
		intOptional("S_MODE", q.SMode),
		intOptional("SL_MODE", q.SLMode),
		intOptional("SL_RAD", q.SLRad),
		intUnlessDefault("S_OVS", q.SOvs, 0),
		floatUnlessDefault("SV_THIN", q.SVThin, 0),
		intOptional("SBB", q.SBB),
		intOptional("SRCH_CLIP_PP", q.SrchClipPP),

		intOptional("NOISE_PROCESS", q.NoiseProcess),
		floatOptional("EZ_DENOISE", q.EZDenoise),
		floatOptional("EZ_KEEP_GRAIN", q.EZKeepGrain),
		stringUnlessDefault("NOISE_PRESET", q.NoisePreset, "Fast"),
		stringOptional("DENOISER", q.Denoiser),
		intUnlessDefault("FFT_THREADS", q.FFTThreads, 1),
		boolOptional("DENOISE_MC", q.DenoiseMC),
		intOptional("NOISE_TR", q.NoiseTR),
		floatOptional("SIGMA", q.Sigma),
		boolUnlessDefault("CHROMA_NOISE", q.ChromaNoise, false),
		floatUnlessDefault("SHOW_NOISE", q.ShowNoise, 0),
		floatOptional("GRAIN_RESTORE", q.GrainRestore),
		floatOptional("NOISE_RESTORE", q.NoiseRestore),
		stringOptional("NOISE_DEINT", q.NoiseDeint),
		boolOptional("STABILIZE_NOISE", q.StabilizeNoise),

		intUnlessDefault("SOURCE_MATCH", q.SourceMatch, 0),
		stringOptional("MATCH_PRESET", q.MatchPreset),
		stringOptional("MATCH_EDI", q.MatchEdi),
		stringOptional("MATCH_PRESET2", q.MatchPreset2),
		stringOptional("MATCH_EDI2", q.MatchEdi2),
		intUnlessDefault("MATCH_TR2", q.MatchTR2, 1),
		floatUnlessNear("MATCH_ENHANCE", q.MatchEnhance, 0.5, 0.001),
		intUnlessDefault("LOSSLESS", q.Lossless, 0),

		boolUnlessDefault("BORDER", q.Border, false),
		boolOptional("PRECISE", q.Precise),
		intUnlessDefault("FORCE_TR", q.ForceTR, 0),
		floatUnlessDefault("STR", q.Str, 2.0),
		floatUnlessDefault("AMP", q.Amp, 0.0625),
		boolUnlessDefault("FAST_MA", q.FastMA, false),
		boolUnlessDefault("ESEARCH_P", q.ESearchP, false),
		boolUnlessDefault("REFINE_MOTION", q.RefineMotion, false),

		// opencl is always passed so havsfunc takes the intended code path.
		boolAlways("OPENCL", q.OpenCL),
		intOptional("DEVICE", q.Device),
	}
}

func noiseReductionFields(n models.NoiseReduction) []field {
	method := "NR_SMDEGRAIN"
	switch n.Method {
	case models.NoiseMCTemporalDenoise:
		method = "NR_MCTD"
	case models.NoiseQTGMCBuiltin:
		method = "NR_QTGMC"
	}
	fields := []field{gate("NR", n.Enabled)}
	fields = append(fields, selectFields(method, "NR_SMDEGRAIN", "NR_MCTD", "NR_QTGMC")...)
	return append(fields,
		intUnlessDefault("NR_SMDEGRAIN_TR", n.SMDegrainTR, 2),
		intUnlessDefault("NR_SMDEGRAIN_THSAD", n.SMDegrainThSAD, 300),
		intAlways("NR_SMDEGRAIN_THSADC", n.SMDegrainThSADC),
		boolAlways("NR_SMDEGRAIN_REFINE", n.SMDegrainRefine),
		intAlways("NR_SMDEGRAIN_PREFILTER", n.SMDegrainPrefilter),

		floatAlways("NR_MCTD_SIGMA", n.MCTemporalSigma),
		intAlways("NR_MCTD_RADIUS", n.MCTemporalRadius),
		stringAlways("NR_MCTD_PROFILE", n.MCTemporalProfile),

		floatUnlessDefault("NR_QTGMC_EZ_DENOISE", n.QTGMCEZDenoise, 0),
		floatUnlessDefault("NR_QTGMC_EZ_KEEP_GRAIN", n.QTGMCEZKeepGrain, 0),
	)
}

func dehaloFields(d models.Dehalo) []field {
	method := "DEHALO_ALPHA"
	switch d.Method {
	case models.DehaloFine:
		method = "DEHALO_FINE"
	case models.DehaloYAHR:
		method = "DEHALO_YAHR"
	}
	fields := []field{gate("DEHALO", d.Enabled)}
	fields = append(fields, selectFields(method, "DEHALO_ALPHA", "DEHALO_FINE", "DEHALO_YAHR")...)
	return append(fields,
		floatUnlessDefault("DEHALO_RX", d.Rx, 2.0),
		floatUnlessDefault("DEHALO_RY", d.Ry, 2.0),
		floatUnlessDefault("DEHALO_DARK_STR", d.DarkStr, 1.0),
		floatUnlessDefault("DEHALO_BRIGHT_STR", d.BrightStr, 1.0),
		intUnlessDefault("DEHALO_LOW_THRESHOLD", d.LowThreshold, 50),
		intUnlessDefault("DEHALO_HIGH_THRESHOLD", d.HighThreshold, 100),
		intUnlessDefault("DEHALO_YAHR_BLUR", d.YAHRBlur, 2),
		intUnlessDefault("DEHALO_YAHR_DEPTH", d.YAHRDepth, 32),
	)
}

func deblockFields(d models.Deblock) []field {
	method := "DEBLOCK_QED"
	if d.Method == models.DeblockStandard {
		method = "DEBLOCK_STD"
	}
	fields := []field{gate("DEBLOCK", d.Enabled)}
	fields = append(fields, selectFields(method, "DEBLOCK_QED", "DEBLOCK_STD")...)
	return append(fields,
		intUnlessDefault("DEBLOCK_QUANT1", d.Quant1, 24),
		intUnlessDefault("DEBLOCK_QUANT2", d.Quant2, 26),
		intUnlessDefault("DEBLOCK_AOFFSET1", d.AOffset1, 1),
		intUnlessDefault("DEBLOCK_AOFFSET2", d.AOffset2, 1),
		intAlways("DEBLOCK_BLOCK_SIZE", d.BlockSize),
		intAlways("DEBLOCK_OVERLAP", d.Overlap),
	)
}

func debandFields(d models.Deband) []field {
	return []field{
		gate("DEBAND", d.Enabled),
		intAlways("DEBAND_RANGE", d.Range),
		intAlways("DEBAND_Y", d.Y),
		intAlways("DEBAND_CB", d.Cb),
		intAlways("DEBAND_CR", d.Cr),
		intAlways("DEBAND_GRAIN_Y", d.GrainY),
		intAlways("DEBAND_GRAIN_C", d.GrainC),
		boolAlways("DEBAND_DYNAMIC_GRAIN", d.DynamicGrain),
		intAlways("DEBAND_OUTPUT_DEPTH", d.OutputDepth),
	}
}

func sharpenFields(s models.Sharpen) []field {
	method := "SHARPEN_LSFMOD"
	if s.Method == models.SharpenCAS {
		method = "SHARPEN_CAS"
	}
	fields := []field{gate("SHARPEN", s.Enabled)}
	fields = append(fields, selectFields(method, "SHARPEN_LSFMOD", "SHARPEN_CAS")...)
	return append(fields,
		intUnlessDefault("SHARPEN_STRENGTH", s.Strength, 100),
		intUnlessDefault("SHARPEN_OVERSHOOT", s.Overshoot, 1),
		intUnlessDefault("SHARPEN_UNDERSHOOT", s.Undershoot, 1),
		intUnlessDefault("SHARPEN_SOFT_EDGE", s.SoftEdge, 0),
		floatUnlessDefault("SHARPEN_CAS_SHARPNESS", s.CASSharpness, 0.5),
	)
}

func chromaFields(c models.ChromaFix) []field {
	active := c.Enabled && (c.ApplyChromaBleedingFix || c.ApplyDeCrawl || c.ApplyVinverse)
	return []field{
		gate("CHROMA", active),
		gate("CHROMA_BLEED", c.ApplyChromaBleedingFix),
		gate("DECRAWL", c.ApplyDeCrawl),
		gate("VINVERSE", c.ApplyVinverse),

		intAlways("CHROMA_BLEED_CX", c.ChromaBleedCx),
		intAlways("CHROMA_BLEED_CY", c.ChromaBleedCy),
		floatAlways("CHROMA_BLEED_CBLUR", c.ChromaBleedCBlur),
		floatAlways("CHROMA_BLEED_STRENGTH", c.ChromaBleedStrength),

		intAlways("DECRAWL_Y_THRESH", c.DeCrawlYThresh),
		intAlways("DECRAWL_C_THRESH", c.DeCrawlCThresh),
		intAlways("DECRAWL_MAX_DIFF", c.DeCrawlMaxDiff),

		floatUnlessDefault("VINVERSE_SSTR", c.VinverseSstr, 2.7),
		intUnlessDefault("VINVERSE_AMNT", c.VinverseAmnt, 255),
		intAlways("VINVERSE_SCL", c.VinverseScl),
	}
}

func colorFields(c models.ColorCorrection) []field {
	return []field{
		gate("COLOR", c.Enabled),
		gate("LEVELS", c.ApplyLevels),
		floatUnlessDefault("TWEAK_HUE", c.Hue, 0),
		floatUnlessDefault("TWEAK_SATURATION", c.Saturation, 1.0),
		floatUnlessDefault("TWEAK_BRIGHTNESS", c.Brightness, 0),
		floatUnlessDefault("TWEAK_CONTRAST", c.Contrast, 1.0),
		boolAlways("TWEAK_CORING", c.Coring),

		intAlways("LEVELS_INPUT_LOW", c.InputLow),
		intAlways("LEVELS_INPUT_HIGH", c.InputHigh),
		floatAlways("LEVELS_GAMMA", c.Gamma),
		intAlways("LEVELS_OUTPUT_LOW", c.OutputLow),
		intAlways("LEVELS_OUTPUT_HIGH", c.OutputHigh),
	}
}

func resizeFields(c models.CropResize) []field {
	fields := []field{gate("RESIZE", c.ResizeActive())}
	if c.UseIntegerUpscale {
		fields = append(fields, selectFields("RESIZE_UPSCALE", "RESIZE_ARBITRARY", "RESIZE_UPSCALE")...)
		upscaler := "UPSCALE_EDI"
		ediFunc := "nnedi3_rpow2"
		switch c.UpscaleMethod {
		case models.UpscaleEEDI3:
			ediFunc = "eedi3_rpow2"
		case models.UpscaleSpline36:
			upscaler = "UPSCALE_SPLINE"
		}
		fields = append(fields, selectFields(upscaler, "UPSCALE_EDI", "UPSCALE_SPLINE")...)
		return append(fields,
			raw("UPSCALE_EDI_FUNC", ediFunc),
			intAlways("UPSCALE_FACTOR", c.UpscaleFactor),
		)
	}

	fields = append(fields, selectFields("RESIZE_ARBITRARY", "RESIZE_ARBITRARY", "RESIZE_UPSCALE")...)
	kernel := "RESIZE_STANDARD"
	ediFunc := "nnedi3_rpow2"
	switch c.Kernel {
	case models.KernelNNEDI3:
		kernel = "RESIZE_EDI"
	case models.KernelEEDI3:
		kernel = "RESIZE_EDI"
		ediFunc = "eedi3_rpow2"
	}
	fields = append(fields, selectFields(kernel, "RESIZE_STANDARD", "RESIZE_EDI")...)
	return append(fields,
		intOptional("RESIZE_WIDTH", c.TargetWidth),
		intOptional("RESIZE_HEIGHT", c.TargetHeight),
		boolAlways("RESIZE_MAINTAIN_ASPECT", c.MaintainAspect),
		raw("RESIZE_KERNEL", c.Kernel.VSFunction()),
		raw("RESIZE_EDI_FUNC", ediFunc),
	)
}
